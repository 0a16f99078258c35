package wiki

import (
	"fmt"
	"os"
	"path/filepath"
)

// Collection owns the set of all webs under one root directory. A single
// Collection is shared process-wide behind the HTTP layer's mutex.
type Collection struct {
	root string
}

// NewCollection returns a collection rooted at root. The root directory
// must already exist.
func NewCollection(root string) *Collection {
	return &Collection{root: root}
}

// Root returns the root directory of the collection.
func (c *Collection) Root() string {
	return c.root
}

// List returns one stub per immediate subdirectory of the root.
func (c *Collection) List() ([]WebStub, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read store root: %w", err)
	}
	var stubs []WebStub
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		stubs = append(stubs, WebStub{Name: entry.Name()})
	}
	return stubs, nil
}

// Get resolves a web by name. A web exists iff root/name is a directory;
// anything else, including a name that would escape the root, yields nil.
func (c *Collection) Get(name string) *Web {
	if !validComponent(name) {
		return nil
	}
	dir := filepath.Join(c.root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	return &Web{Name: name, Dir: dir}
}

// Create makes a new web directory. Fails with ErrOverwrite if root/name
// already exists, whether as a file or a directory.
func (c *Collection) Create(name string) (*Web, error) {
	if !validComponent(name) {
		return nil, fmt.Errorf("web %q: %w", name, ErrInvalidPath)
	}
	dir := filepath.Join(c.root, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("web %q: %w", name, ErrOverwrite)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create web directory: %w", err)
	}
	return &Web{Name: name, Dir: dir}, nil
}
