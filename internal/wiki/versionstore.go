package wiki

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
)

const versionExt = ".json"

// VersionStub is a hash-only projection of a stored version.
type VersionStub struct {
	Hash string `json:"hash"`
}

// VersionStore is an append-only, content-addressed key-value layer over a
// single directory. The key is the SHA-256 hex digest of the value; a file
// is written at most once per distinct content and never rewritten, so
// version files are immutable once observed.
type VersionStore struct {
	dir string
}

// NewVersionStore returns a store over dir. The directory is created lazily
// on first write.
func NewVersionStore(dir string) VersionStore {
	return VersionStore{dir: dir}
}

// Put stores data under its content hash and returns the hex digest.
// Writing content that is already stored is a no-op.
func (s VersionStore) Put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	path := s.pathFor(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create versions directory: %w", err)
	}
	// Atomic placement: the file appears fully written or not at all.
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write version %s: %w", hash, err)
	}
	return hash, nil
}

// Get returns the stored bytes for hash. Returns ErrNotFound if no version
// with that hash exists.
func (s VersionStore) Get(hash string) ([]byte, error) {
	if !validHash(hash) {
		return nil, fmt.Errorf("version %q: %w", hash, ErrNotFound)
	}
	data, err := os.ReadFile(s.pathFor(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("version %s: %w", hash, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read version %s: %w", hash, err)
	}
	return data, nil
}

// List returns one stub per stored version. A missing directory is an empty
// history, not an error.
func (s VersionStore) List() ([]VersionStub, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read versions directory: %w", err)
	}
	var stubs []VersionStub
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), versionExt) {
			continue
		}
		stubs = append(stubs, VersionStub{Hash: strings.TrimSuffix(entry.Name(), versionExt)})
	}
	return stubs, nil
}

func (s VersionStore) pathFor(hash string) string {
	return filepath.Join(s.dir, hash+versionExt)
}

// validHash reports whether hash is a plausible lowercase hex digest. It
// keeps externally supplied hashes from naming paths outside the store.
func validHash(hash string) bool {
	if hash == "" {
		return false
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
