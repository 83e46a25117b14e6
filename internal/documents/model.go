package documents

import "time"

// Kind names what an upload is used for.
type Kind string

const (
	KindResume         Kind = "resume"
	KindJobDescription Kind = "job_description"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindResume || k == KindJobDescription
}

// Document represents an uploaded file and the text extracted from it.
// It does not change after extraction.
type Document struct {
	ID               string
	SessionID        string
	Kind             Kind
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ExtractedTextKey string
	Text             string
	CreatedAt        time.Time
}
