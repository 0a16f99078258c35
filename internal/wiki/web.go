package wiki

import (
	"fmt"
	"os"
	"path/filepath"
)

// WebStub is a name-only projection of a web.
type WebStub struct {
	Name string `json:"name"`
}

// Web is one named directory under the store root, owning a set of pages.
// Invariant: the directory's last path component equals Name.
type Web struct {
	Name string
	Dir  string
}

// ListPages returns one stub per immediate subdirectory of the web.
func (w *Web) ListPages() ([]PageStub, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read web directory: %w", err)
	}
	var stubs []PageStub
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		stubs = append(stubs, PageStub{Name: entry.Name()})
	}
	return stubs, nil
}

// OpenPage opens the named page under this web. Returns ErrNotFound if the
// page directory is absent and ErrInvalidPath for names that would resolve
// outside the web.
func (w *Web) OpenPage(name string) (*Page, error) {
	if !validComponent(name) {
		return nil, fmt.Errorf("page %q: %w", name, ErrInvalidPath)
	}
	return OpenPage(filepath.Join(w.Dir, name))
}

// NewPage builds an unpersisted page bound to this web's directory. Pure
// construction: nothing touches the filesystem until Create is called, which
// rejects names that would resolve outside the web.
func (w *Web) NewPage(detail PageDetail) *Page {
	return &Page{Dir: filepath.Join(w.Dir, detail.Name), Detail: detail}
}

// validComponent reports whether name is usable as a single path component:
// non-empty, not a dot entry, and free of separators. A name that fails this
// check would resolve outside its parent directory.
func validComponent(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return name == filepath.Base(name)
}
