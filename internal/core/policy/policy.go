// Package policy holds the authorization rules for mutations. Each rule is a
// pure predicate over the current identity, which is nil for anonymous
// requests.
package policy

import "github.com/martijn/jobboard/internal/core/domain"

// CanPostJob reports whether who may publish a job posting.
func CanPostJob(who *domain.Identity) bool {
	return who != nil && who.IsEmployer
}

// CanDeleteJob reports whether who authored job.
func CanDeleteJob(who *domain.Identity, job *domain.Job) bool {
	return who != nil && job != nil && job.IsAuthoredBy(who.ID)
}

// CanDeleteResponse allows the responder and the author of the job the
// response belongs to.
func CanDeleteResponse(who *domain.Identity, response *domain.Response, job *domain.Job) bool {
	if who == nil || response == nil {
		return false
	}
	if response.UserID == who.ID {
		return true
	}
	return job != nil && job.IsAuthoredBy(who.ID)
}

func CanEditProfile(who *domain.Identity, profile *domain.User) bool {
	return who != nil && profile != nil && who.ID == profile.ID
}
