package wiki

import (
	"encoding/json"
	"fmt"
)

// PageDetail is the versionable unit of page content.
//
// Name ties the detail to its page directory: the directory's last path
// component must equal Name, enforced by OpenPage.
type PageDetail struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Parent  string `json:"parent"`
}

// ParseDetail deserializes a PageDetail from JSON bytes.
func ParseDetail(data []byte) (PageDetail, error) {
	var d PageDetail
	if err := json.Unmarshal(data, &d); err != nil {
		return PageDetail{}, fmt.Errorf("failed to parse page detail: %w", err)
	}
	return d, nil
}

// encode serializes the detail to the canonical on-disk form. The same bytes
// are written to the current-detail file and hashed for the version store,
// so identical details always produce identical version files.
func (d *PageDetail) encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize page detail: %w", err)
	}
	return data, nil
}
