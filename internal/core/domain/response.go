package domain

import "time"

type Response struct {
	ID      int64     `db:"id"`
	JobID   int64     `db:"job_id"`
	UserID  int64     `db:"user_id"`
	Text    string    `db:"text"`
	Contact *string   `db:"contact"`
	Created time.Time `db:"created"`
}

func NewResponse(jobID, userID int64, text string, contact *string) *Response {
	return &Response{
		JobID:   jobID,
		UserID:  userID,
		Text:    text,
		Contact: contact,
		Created: time.Now().UTC(),
	}
}

// ResponseView is a response joined with the responder's username and the
// title of the job it answers.
type ResponseView struct {
	Response
	UserName *string `db:"user_name"`
	JobTitle *string `db:"job_title"`
}
