package domain

import "time"

// Attachment is a file stored in the blob store under a task.
type Attachment struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
