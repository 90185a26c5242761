package entities

import "time"

// Document is owned by its task and removed with it.
type Document struct {
	DocumentID  string
	TaskID      string
	ClientID    string
	UploadedBy  string
	FileName    string
	FileType    string
	ObjectPath  string
	LocationRef string
	UploadedAt  time.Time
}
