package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/dto"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/policy"
	"github.com/martijn/jobboard/internal/core/service"
)

const msgEmployersOnly = "Only employers can post jobs. Please log in with an employer account."

type JobHandler struct {
	jobService *service.JobService
	view
}

func NewJobHandler(jobService *service.JobService, sessions *session.Manager) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		view:       view{sessions: sessions},
	}
}

// Index handles GET /
func (h *JobHandler) Index() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		q := c.Query("q")
		jobs, err := h.jobService.ListJobs(c.Request.Context(), q)
		if err != nil {
			h.fail(c, who, err, "/")
			return
		}
		h.render(c, http.StatusOK, "index.html", who, gin.H{
			"jobs": jobs,
			"q":    q,
		})
	})
}

// AddForm handles GET /add
func (h *JobHandler) AddForm() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		if !policy.CanPostJob(who) {
			h.requireLogin(c, msgEmployersOnly)
			return
		}
		h.render(c, http.StatusOK, "add_job.html", who, gin.H{"title": "Post a job"})
	})
}

// Add handles POST /add
func (h *JobHandler) Add() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		if !policy.CanPostJob(who) {
			h.requireLogin(c, msgEmployersOnly)
			return
		}

		var form dto.JobForm
		err := bindForm(c, &form)
		var job *domain.Job
		if err == nil {
			job, err = h.jobService.CreateJob(c.Request.Context(), who, service.JobInput{
				Title:       form.Title,
				Description: form.Description,
				Tags:        form.Tags,
				Salary:      form.Salary,
			})
		}

		if err != nil {
			if msg, ok := validationMessage(err); ok {
				h.render(c, http.StatusBadRequest, "add_job.html", who, gin.H{
					"title": "Post a job",
					"form":  form,
					"error": msg,
				})
				return
			}
			if errors.Is(err, service.ErrForbidden) {
				h.requireLogin(c, msgEmployersOnly)
				return
			}
			h.fail(c, who, err, "/")
			return
		}

		h.redirect(c, jobPath(job.ID), session.FlashSuccess, "Your job has been posted.")
	})
}

// Detail handles GET /job/:id
func (h *JobHandler) Detail() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c, who)
			return
		}
		h.renderDetail(c, who, id, http.StatusOK, nil)
	})
}

// Respond handles POST /respond/:id
func (h *JobHandler) Respond() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c, who)
			return
		}
		if who == nil {
			h.requireLogin(c, "Please log in to respond to jobs.")
			return
		}

		var form dto.ResponseForm
		err := bindForm(c, &form)
		if err == nil {
			_, err = h.jobService.Respond(c.Request.Context(), who, id, form.Text, form.Contact)
		}

		if err != nil {
			if msg, ok := validationMessage(err); ok {
				h.renderDetail(c, who, id, http.StatusBadRequest, gin.H{"form": form, "error": msg})
				return
			}
			h.fail(c, who, err, "/")
			return
		}

		h.redirect(c, jobPath(id), session.FlashSuccess, "Your response has been sent.")
	})
}

// Delete handles POST /delete/:id
func (h *JobHandler) Delete() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c, who)
			return
		}
		if who == nil {
			h.requireLogin(c, "Please log in to manage your jobs.")
			return
		}

		if err := h.jobService.DeleteJob(c.Request.Context(), who, id); err != nil {
			if errors.Is(err, service.ErrForbidden) {
				h.redirect(c, jobPath(id), session.FlashDanger, "You can only delete your own jobs.")
				return
			}
			h.fail(c, who, err, "/")
			return
		}

		h.redirect(c, "/", session.FlashSuccess, "The job has been deleted.")
	})
}

// DeleteResponse handles POST /del_response/:id
func (h *JobHandler) DeleteResponse() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c, who)
			return
		}
		if who == nil {
			h.requireLogin(c, "Please log in to manage responses.")
			return
		}

		jobID, err := h.jobService.DeleteResponse(c.Request.Context(), who, id)
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				h.redirect(c, backTo(c, "/"), session.FlashDanger, "You cannot delete that response.")
				return
			}
			h.fail(c, who, err, "/")
			return
		}

		h.redirect(c, backTo(c, jobPath(jobID)), session.FlashSuccess, "The response has been deleted.")
	})
}

func (h *JobHandler) renderDetail(c *gin.Context, who *domain.Identity, id int64, status int, extra gin.H) {
	job, responses, err := h.jobService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.fail(c, who, err, "/")
		return
	}

	deletable := make(map[int64]bool, len(responses))
	for _, r := range responses {
		deletable[r.ID] = policy.CanDeleteResponse(who, &r.Response, &job.Job)
	}

	data := gin.H{
		"title":     job.Title,
		"job":       job,
		"responses": responses,
		"canDelete": policy.CanDeleteJob(who, &job.Job),
		"deletable": deletable,
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "job_detail.html", who, data)
}

func jobPath(id int64) string {
	return "/job/" + strconv.FormatInt(id, 10)
}
