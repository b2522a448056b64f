package dto

import "time"

// JobForm is posted by the add job page
type JobForm struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"required"`
	Tags        string `form:"tags" binding:"max=200"`
	Salary      string `form:"salary" binding:"max=100"`
}

// ResponseForm is posted from the job detail page
type ResponseForm struct {
	Text    string `form:"text" binding:"required"`
	Contact string `form:"contact" binding:"max=200"`
}

// ProfileForm edits the bio and avatar of a profile
type ProfileForm struct {
	About  string `form:"about" binding:"max=2000"`
	Avatar string `form:"avatar" binding:"omitempty,url"`
}

// JobResponse is one entry of GET /api/jobs
type JobResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        *string   `json:"tags"`
	Salary      *string   `json:"salary"`
	Created     time.Time `json:"created"`
	Author      *string   `json:"author"`
}

// ErrorResponse is returned by the JSON endpoints on failure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
