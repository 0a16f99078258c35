package dto

import (
	"errors"
	"testing"
)

func TestCreateAttachmentRequest_Validate(t *testing.T) {
	valid := []string{"logo.png", "report_2024.pdf", "a.b"}
	for _, name := range valid {
		r := CreateAttachmentRequest{FileName: name, EncodedData: "aGk="}
		if err := r.Validate(); err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
		}
	}

	invalid := []string{"", "noext", "two.dots.txt", "../up.txt", "sp ace.txt", ".hidden", "trail."}
	for _, name := range invalid {
		r := CreateAttachmentRequest{FileName: name, EncodedData: "aGk="}
		if err := r.Validate(); err == nil {
			t.Errorf("%q: expected a validation error", name)
		}
	}

	r := CreateAttachmentRequest{FileName: "ok.txt"}
	var apiErr *APIError
	if err := r.Validate(); !errors.As(err, &apiErr) || apiErr.Code() != ErrorCodeMissingField {
		t.Errorf("missing data: got %v, want MISSING_FIELD", r.Validate())
	}
}

func TestPageDetailRequest_Validate(t *testing.T) {
	r := PageDetailRequest{Name: "Start"}
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	r.Name = ""
	if err := r.Validate(); err == nil {
		t.Error("expected an error for a missing name")
	}
}

func TestAPIError(t *testing.T) {
	base := errors.New("disk full")
	apiErr := StorageError(base)
	if apiErr.StatusCode() != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode())
	}
	if apiErr.Code() != ErrorCodeStorageError {
		t.Errorf("Code = %s", apiErr.Code())
	}
	if !errors.Is(apiErr, base) {
		t.Error("wrapped error lost")
	}

	if NotFound("web").Error() != "web not found" {
		t.Errorf("message = %q", NotFound("web").Error())
	}
	if Conflict("page").StatusCode() != 400 {
		t.Errorf("conflict status = %d, want 400", Conflict("page").StatusCode())
	}
}
