package entities

import (
	"strings"
	"time"
)

// Response is one submitted form entry. Payload holds the submitted fields as
// a JSON document, or the sealed ciphertext when Encrypted is true.
type Response struct {
	ResponseID string
	AccountID  string
	FormID     string
	Payload    string
	Encrypted  bool
	Read       bool
	Starred    bool
	Spam       bool
	Deleted    bool
	Labels     []string
	Logs       []ResponseLog
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
	ExpiresAt  *time.Time
}

func (r Response) ValidateCreate() bool {
	return strings.TrimSpace(r.AccountID) != "" &&
		strings.TrimSpace(r.FormID) != "" &&
		strings.TrimSpace(r.Payload) != ""
}

// ResponseLog is an activity trail entry kept with the response.
type ResponseLog struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// ResponseNote is a private annotation left by a dashboard user.
type ResponseNote struct {
	NoteID     string
	ResponseID string
	AuthorID   string
	Body       string
	CreatedAt  time.Time
}

// ResponseFile is an upload attached to a response. StorageKey points into
// the file store; uploads start under tmp/ and move to permanent storage
// once the response is persisted.
type ResponseFile struct {
	FileID      string
	ResponseID  string
	Filename    string
	ContentType string
	SizeBytes   int64
	StorageKey  string
	CreatedAt   time.Time
}
