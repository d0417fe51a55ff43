package domain

import "time"

// Attachment describes a file owned by a ticket. The full list is stored on
// the ticket row as a jsonb column; StorageKey is set only once the file has
// actually been persisted to object storage.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size"`
	StorageKey string    `json:"key"`
	Location   string    `json:"location,omitempty"`
	MimeType   string    `json:"mimetype,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy int64     `json:"uploadedBy"`
}
