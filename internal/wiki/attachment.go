package wiki

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// diskNameRe accepts any filename with a non-empty stem and extension.
// It applies to names already on disk, which predate validation; uploads
// are validated more strictly at the API boundary before Save is called.
var diskNameRe = regexp.MustCompile(`^.+\..+$`)

// AttachmentStub is a filename-only projection of a stored attachment.
type AttachmentStub struct {
	FileName string `json:"file_name"`
}

// Attachment is a binary file stored under a page's attachments directory.
// Attachments have no version history and no deduplication, unlike page
// content.
type Attachment struct {
	Path string
}

// Data reads the whole attachment into memory.
func (a *Attachment) Data() ([]byte, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	return data, nil
}

// MimeType derives a content type from the filename extension alone. The
// match is case-insensitive against a fixed table; anything unrecognized,
// including a missing extension, serves as a generic octet stream. No
// content sniffing.
func (a *Attachment) MimeType() string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(a.Path), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// AttachmentUpload is the wire payload for creating an attachment.
type AttachmentUpload struct {
	FileName    string `json:"file_name"`
	EncodedData string `json:"encoded_data"`
}

// Data decodes the base64 payload.
func (u *AttachmentUpload) Data() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(u.EncodedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return data, nil
}

// AttachmentStore reads and writes the raw files under one page's
// attachments directory.
type AttachmentStore struct {
	dir string
}

// NewAttachmentStore returns a store over the attachments directory of a
// page. The directory is created lazily on first save.
func NewAttachmentStore(dir string) AttachmentStore {
	return AttachmentStore{dir: dir}
}

// List returns one stub per regular file in the attachments directory.
// A missing directory means no attachments, not an error.
func (s AttachmentStore) List() ([]AttachmentStub, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read attachments directory: %w", err)
	}
	var stubs []AttachmentStub
	for _, entry := range entries {
		if entry.IsDir() || !diskNameRe.MatchString(entry.Name()) {
			continue
		}
		stubs = append(stubs, AttachmentStub{FileName: entry.Name()})
	}
	return stubs, nil
}

// Open resolves an attachment by filename. Returns ErrNotFound if the file
// does not exist and ErrInvalidPath if the name would escape the directory.
func (s AttachmentStore) Open(fileName string) (*Attachment, error) {
	if !validComponent(fileName) {
		return nil, fmt.Errorf("attachment %q: %w", fileName, ErrInvalidPath)
	}
	path := filepath.Join(s.dir, fileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("attachment %q: %w", fileName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat attachment: %w", err)
	}
	return &Attachment{Path: path}, nil
}

// Save decodes the upload and writes (or overwrites) the target file.
// Filename validation is the caller's responsibility.
func (s AttachmentStore) Save(upload AttachmentUpload) error {
	data, err := upload.Data()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create attachments directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, upload.FileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write attachment: %w", err)
	}
	return nil
}
