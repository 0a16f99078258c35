// Package wiki implements the on-disk wiki store: a root directory of webs,
// each web a directory of pages, each page a directory holding its current
// detail file, an immutable content-addressed version history, and raw
// attachment files.
//
// Layout on disk:
//
//	root/<web>/<page>/page.json             current detail
//	root/<web>/<page>/versions/<hash>.json  immutable snapshots
//	root/<web>/<page>/attachments/<name>    raw bytes
//
// All operations are synchronous filesystem calls; callers serialize access
// (the HTTP layer holds a single collection-wide mutex).
package wiki

import "errors"

// Sentinel errors returned by store operations. Callers dispatch on kind via
// errors.Is; I/O, JSON and base64 failures are wrapped with %w so the
// underlying error stays inspectable.
var (
	// ErrNotFound is returned when a web, page, attachment or version does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotDirectory is returned when a page path exists but is not a
	// directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrInvalidPath is returned when a path has no usable final component
	// or a name contains path separators.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNameMismatch is returned when a page's stored detail name differs
	// from its directory name.
	ErrNameMismatch = errors.New("detail name does not match directory")
	// ErrOverwrite is returned when creating a web or page whose directory
	// already exists.
	ErrOverwrite = errors.New("already exists")
	// ErrInvalidUTF8 is returned for directory names that are not valid
	// UTF-8.
	ErrInvalidUTF8 = errors.New("name is not valid utf-8")
	// ErrInvalidEncoding is returned when an attachment payload is not
	// valid base64.
	ErrInvalidEncoding = errors.New("invalid base64 data")
)
