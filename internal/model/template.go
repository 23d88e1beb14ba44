package model

import "time"

// Template represents an uploaded source document with placeholder tokens.
// Identity is the logical Name (file stem); FileName is the stored name on
// disk, which carries an upload timestamp suffix to avoid collisions.
type Template struct {
	Name        string    `json:"name"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
