package document

import (
	"time"

	"filesend-bot/internal/domain/similarity"
)

// FileType classifies an upload.
type FileType string

const (
	TypeEssay        FileType = "essay"
	TypePresentation FileType = "presentation"
)

// ParseFileType accepts the wire value of a file type.
func ParseFileType(raw string) (FileType, bool) {
	switch FileType(raw) {
	case TypeEssay:
		return TypeEssay, true
	case TypePresentation:
		return TypePresentation, true
	}
	return "", false
}

// Label is the human readable name substituted for the [type] placeholder.
func (t FileType) Label() string {
	switch t {
	case TypeEssay:
		return "Essay"
	case TypePresentation:
		return "Presentation"
	}
	return string(t)
}

// UploadedFile is a delivered document. OwnerName and OwnerTelegramID are
// filled by listing queries only.
type UploadedFile struct {
	ID              uint
	PublicID        string
	UserID          uint
	OwnerName       string
	OwnerTelegramID int64
	FileName        string
	FileType        FileType
	Content         string
	RemotePath      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Owner identifies the uploading user.
type Owner struct {
	ID         uint
	TelegramID int64
	FullName   string
}

// Target is where a document will be stored remotely.
type Target struct {
	Folder string
	Name   string
	Path   string
}

// StoreParams describes one delivery of a downloaded scratch file.
type StoreParams struct {
	Owner       Owner
	Type        FileType
	Target      Target
	ScratchPath string
	// Replace overwrites the remote file and updates the stored row.
	Replace bool
}

// StoreResult reports a completed delivery.
type StoreResult struct {
	File     *UploadedFile
	Matches  []similarity.Match
	Replaced bool
}
