package wiki

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestPage(t *testing.T, name string) *Page {
	t.Helper()
	return &Page{
		Dir: filepath.Join(t.TempDir(), name),
		Detail: PageDetail{
			Name:    name,
			Title:   name + " title",
			Content: "initial content",
		},
	}
}

func TestPage_CreateAndOpen(t *testing.T) {
	p := newTestPage(t, "Home")
	if err := p.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := OpenPage(p.Dir)
	if err != nil {
		t.Fatalf("OpenPage failed: %v", err)
	}
	if got.Detail != p.Detail {
		t.Errorf("Detail = %+v, want %+v", got.Detail, p.Detail)
	}
}

func TestPage_CreateTwice(t *testing.T) {
	p := newTestPage(t, "Home")
	if err := p.Create(); err != nil {
		t.Fatal(err)
	}
	if err := p.Create(); !errors.Is(err, ErrOverwrite) {
		t.Errorf("expected ErrOverwrite, got %v", err)
	}
}

func TestPage_UpdateNotFound(t *testing.T) {
	p := newTestPage(t, "Home")
	if err := p.Update(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPage_Update(t *testing.T) {
	p := newTestPage(t, "Home")
	if err := p.Create(); err != nil {
		t.Fatal(err)
	}
	p.Detail.Content = "updated content"
	if err := p.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := OpenPage(p.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Detail.Content != "updated content" {
		t.Errorf("Content = %q, want %q", got.Detail.Content, "updated content")
	}
}

func TestOpenPage_NotFound(t *testing.T) {
	if _, err := OpenPage(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenPage_NotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Home")
	if err := os.WriteFile(path, []byte("not a page"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPage(path); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}
}

func TestOpenPage_MissingDetailFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Home")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPage(dir); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenPage_NameMismatch(t *testing.T) {
	// Create a valid page, then rename the directory out from under it.
	p := newTestPage(t, "Home")
	if err := p.Create(); err != nil {
		t.Fatal(err)
	}
	renamed := filepath.Join(filepath.Dir(p.Dir), "Renamed")
	if err := os.Rename(p.Dir, renamed); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPage(renamed); !errors.Is(err, ErrNameMismatch) {
		t.Errorf("expected ErrNameMismatch, got %v", err)
	}
}

func TestPage_VersionPerDistinctContent(t *testing.T) {
	p := newTestPage(t, "Home")
	if err := p.Create(); err != nil {
		t.Fatal(err)
	}

	// Rewriting identical content must not grow the history.
	if err := p.Update(); err != nil {
		t.Fatal(err)
	}
	stubs, err := p.ListVersions()
	if err != nil {
		t.Fatal(err)
	}
	if len(stubs) != 1 {
		t.Fatalf("expected 1 version after identical rewrite, got %d", len(stubs))
	}

	p.Detail.Content = "second revision"
	if err := p.Update(); err != nil {
		t.Fatal(err)
	}
	stubs, err = p.ListVersions()
	if err != nil {
		t.Fatal(err)
	}
	if len(stubs) != 2 {
		t.Errorf("expected 2 versions after distinct update, got %d", len(stubs))
	}
}

func TestPage_GetVersion(t *testing.T) {
	p := newTestPage(t, "Home")
	if err := p.Create(); err != nil {
		t.Fatal(err)
	}
	stubs, err := p.ListVersions()
	if err != nil {
		t.Fatal(err)
	}
	if len(stubs) != 1 {
		t.Fatalf("expected 1 version, got %d", len(stubs))
	}

	detail, err := p.GetVersion(stubs[0].Hash)
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if detail != p.Detail {
		t.Errorf("version detail = %+v, want %+v", detail, p.Detail)
	}

	if _, err := p.GetVersion("0000000000000000000000000000000000000000000000000000000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown hash, got %v", err)
	}
}

func TestPage_ListVersionsEmptyBeforeWrite(t *testing.T) {
	p := newTestPage(t, "Home")
	stubs, err := p.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(stubs) != 0 {
		t.Errorf("expected empty history, got %v", stubs)
	}
}

func TestParseDetail_Invalid(t *testing.T) {
	if _, err := ParseDetail([]byte("not json")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestPage_CreateRejectsEscapingName(t *testing.T) {
	root := t.TempDir()
	web, err := NewCollection(root).Create("Main")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", ".", "..", "../evil", "a/b"} {
		if err := web.NewPage(PageDetail{Name: name}).Create(); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Create(%q): expected ErrInvalidPath, got %v", name, err)
		}
		if err := web.NewPage(PageDetail{Name: name}).Update(); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Update(%q): expected ErrInvalidPath, got %v", name, err)
		}
	}

	// Nothing may have landed outside the web directory.
	if _, err := os.Stat(filepath.Join(root, "evil")); !os.IsNotExist(err) {
		t.Error("page directory created outside the web")
	}
	entries, err := os.ReadDir(web.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("web directory not empty: %v", entries)
	}
}

func TestOpenPage_InvalidUTF8(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bad\xff\xfe")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Skipf("filesystem rejects non-UTF-8 names: %v", err)
	}
	if _, err := OpenPage(dir); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}
