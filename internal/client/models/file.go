package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// File is the metadata record of a remote file resource. The client only
// relies on ID and Filename; the rest is shown as-is.
type File struct {
	ID        FileID    `json:"id"`
	Filename  string    `json:"filename"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   int64     `json:"owner_id"`
}

// Confirmation is the optional body of a delete response.
type Confirmation struct {
	Detail string `json:"detail,omitempty"`
}

// FileID identifies a remote file. The service may send it as a JSON number
// or string; the client treats it as opaque text either way.
type FileID string

func (id *FileID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = FileID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	*id = FileID(n.String())
	return nil
}

func (id FileID) String() string { return string(id) }
