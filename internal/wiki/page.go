package wiki

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/renameio"
)

const (
	detailFileName     = "page.json"
	versionsDirName    = "versions"
	attachmentsDirName = "attachments"
)

// PageStub is a name-only projection of a page.
type PageStub struct {
	Name string `json:"name"`
}

// Page is one page directory under a web, holding the current detail file,
// the version history and the attachments.
type Page struct {
	Dir    string
	Detail PageDetail
}

// OpenPage reads an existing page from dir.
//
// The directory's last path component must equal the stored detail's name;
// a disagreement means the directory was renamed out from under its content
// and fails with ErrNameMismatch. This identity check happens only here,
// never on construction elsewhere.
func OpenPage(dir string) (*Page, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page %q: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat page directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("page %q: %w", dir, ErrNotDirectory)
	}

	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("page %q: %w", dir, ErrInvalidPath)
	}
	if !utf8.ValidString(name) {
		return nil, fmt.Errorf("page %q: %w", dir, ErrInvalidUTF8)
	}

	data, err := os.ReadFile(filepath.Join(dir, detailFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page %q: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read page detail: %w", err)
	}
	detail, err := ParseDetail(data)
	if err != nil {
		return nil, err
	}
	if detail.Name != name {
		return nil, fmt.Errorf("page %q has detail name %q: %w", name, detail.Name, ErrNameMismatch)
	}
	return &Page{Dir: dir, Detail: detail}, nil
}

// Create persists a new page. Fails with ErrInvalidPath if the page name
// would resolve outside its web and ErrOverwrite if the page directory
// already exists, whether as a file or a directory.
func (p *Page) Create() error {
	if !validComponent(p.Detail.Name) {
		return fmt.Errorf("page %q: %w", p.Detail.Name, ErrInvalidPath)
	}
	if _, err := os.Stat(p.Dir); err == nil {
		return fmt.Errorf("page %q: %w", p.Dir, ErrOverwrite)
	}
	if err := os.Mkdir(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	return p.write()
}

// Update overwrites the current detail of an existing page. Fails with
// ErrNotFound if the page directory does not exist.
func (p *Page) Update() error {
	if !validComponent(p.Detail.Name) {
		return fmt.Errorf("page %q: %w", p.Detail.Name, ErrInvalidPath)
	}
	if _, err := os.Stat(p.Dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("page %q: %w", p.Dir, ErrNotFound)
		}
		return fmt.Errorf("failed to stat page directory: %w", err)
	}
	return p.write()
}

// write is the shared write path for Create and Update: serialize the
// detail once, replace the current-detail file with those bytes, then
// content-address the same bytes into the version store. Rewriting
// unchanged content leaves the history untouched.
func (p *Page) write() error {
	data, err := p.Detail.encode()
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(filepath.Join(p.Dir, detailFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write page detail: %w", err)
	}
	if _, err := p.versions().Put(data); err != nil {
		return err
	}
	return nil
}

// ListVersions returns one stub per snapshot in the page's history, oldest
// data first by hash order. A page that was never written has an empty
// history.
func (p *Page) ListVersions() ([]VersionStub, error) {
	return p.versions().List()
}

// GetVersion reads and deserializes the snapshot with the given hash.
func (p *Page) GetVersion(hash string) (PageDetail, error) {
	data, err := p.versions().Get(hash)
	if err != nil {
		return PageDetail{}, err
	}
	return ParseDetail(data)
}

// ListAttachments returns the page's attachments.
func (p *Page) ListAttachments() ([]AttachmentStub, error) {
	return p.attachments().List()
}

// GetAttachment resolves one attachment by filename.
func (p *Page) GetAttachment(fileName string) (*Attachment, error) {
	return p.attachments().Open(fileName)
}

// SaveAttachment decodes and stores an uploaded attachment. The caller
// validates the filename first.
func (p *Page) SaveAttachment(upload AttachmentUpload) error {
	return p.attachments().Save(upload)
}

func (p *Page) versions() VersionStore {
	return NewVersionStore(filepath.Join(p.Dir, versionsDirName))
}

func (p *Page) attachments() AttachmentStore {
	return NewAttachmentStore(filepath.Join(p.Dir, attachmentsDirName))
}
