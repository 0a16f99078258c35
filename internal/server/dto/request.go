package dto

import "regexp"

// attachmentNameRe is the strict validator for user-submitted attachment
// filenames: word characters, one dot, word characters. Names already on
// disk are validated more permissively by the store.
var attachmentNameRe = regexp.MustCompile(`^\w+\.\w+$`)

// --- Webs ---

// CreateWebRequest is a request to create a new web.
type CreateWebRequest struct {
	Name string `json:"name"`
}

// Validate validates the create web request fields.
func (r *CreateWebRequest) Validate() error {
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// --- Pages ---

// PageDetailRequest is the wire form of a page detail, used for both
// CreatePage and UpdatePage bodies.
type PageDetailRequest struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Parent  string `json:"parent"`
}

// Validate validates the page detail fields.
func (r *PageDetailRequest) Validate() error {
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// --- Attachments ---

// CreateAttachmentRequest is a request to upload an attachment.
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name"`
	EncodedData string `json:"encoded_data"`
}

// Validate validates the upload fields. The filename check runs before any
// filesystem write is attempted.
func (r *CreateAttachmentRequest) Validate() error {
	if r.FileName == "" {
		return MissingField("file_name")
	}
	if !attachmentNameRe.MatchString(r.FileName) {
		return InvalidFormat("file_name")
	}
	if r.EncodedData == "" {
		return MissingField("encoded_data")
	}
	return nil
}
