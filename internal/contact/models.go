package contact

import (
	"time"
)

// SubmissionInput is the raw, untrusted JSON object posted by the form.
type SubmissionInput map[string]interface{}

// Submission is a validated contact request. Only the Validator creates one.
type Submission struct {
	name         string
	email        string
	phone        string
	organization string
	message      string
	labels       []string
}

func (s Submission) Name() string         { return s.name }
func (s Submission) Email() string        { return s.email }
func (s Submission) Phone() string        { return s.phone }
func (s Submission) Organization() string { return s.organization }
func (s Submission) Message() string      { return s.message }

// Labels returns a copy of the screening labels.
func (s Submission) Labels() []string {
	if len(s.labels) == 0 {
		return nil
	}
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// WithLabels returns a copy of s carrying labels.
func (s Submission) WithLabels(labels []string) Submission {
	if len(labels) == 0 {
		s.labels = nil
		return s
	}
	s.labels = make([]string, len(labels))
	copy(s.labels, labels)
	return s
}

// StoredSubmission is a persisted submission as returned to the admin viewer.
type StoredSubmission struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        *string   `json:"phone" bson:"phone"`
	Organization *string   `json:"organization" bson:"organization"`
	Message      string    `json:"message" bson:"message"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msg := e[0].Field + ": " + e[0].Message
	if len(e) > 1 {
		msg += " (and more)"
	}
	return msg
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListResponse struct {
	Success bool               `json:"success"`
	Data    []StoredSubmission `json:"data"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

const (
	MessageSubmitted     = "Thank you for your submission. We'll get back to you soon!"
	MessageEndpointAlive = "Contact API endpoint is active"
	MessageFetchFailed   = "Failed to fetch submissions"
	MessageSetupDone     = "Contact submissions table setup complete"
	MessageSetupFailed   = "Failed to set up contact submissions table"
)
