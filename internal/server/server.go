// Package server implements the HTTP boundary of the wiki store.
//
// Every request is classified by the path router into a typed route, the
// process-wide collection lock is taken for the duration of the store
// operations, and store errors are mapped to HTTP statuses here. Store
// code never sees HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/wikidproject/wikid/internal/routes"
	"github.com/wikidproject/wikid/internal/server/dto"
	"github.com/wikidproject/wikid/internal/wiki"
)

// Server dispatches wiki REST requests to the store. It implements
// http.Handler; wrap it with Handler for the full middleware chain.
type Server struct {
	// mu serializes all store operations. Every route that touches the
	// store resolves through the collection, so this single lock is the
	// whole concurrency discipline.
	mu      sync.Mutex
	webs    *wiki.Collection
	router  *routes.Router
	version string
}

// New creates a server over the given collection.
func New(webs *wiki.Collection, version string) *Server {
	return &Server{webs: webs, router: routes.New(), version: version}
}

// ServeHTTP classifies the request and runs the matching operation.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" && r.Method == http.MethodGet {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
		return
	}
	rt := s.router.Route(r.Method, r.URL.Path)
	switch rt.Kind {
	case routes.KindListWebs:
		s.listWebs(w, r)
	case routes.KindCreateWeb:
		s.createWeb(w, r)
	case routes.KindListPages:
		s.listPages(w, r, rt)
	case routes.KindCreatePage:
		s.createPage(w, r, rt)
	case routes.KindShowPage:
		s.showPage(w, r, rt)
	case routes.KindUpdatePage:
		s.updatePage(w, r, rt)
	case routes.KindListAttachments:
		s.listAttachments(w, r, rt)
	case routes.KindCreateAttachment:
		s.createAttachment(w, r, rt)
	case routes.KindServeAttachment:
		s.serveAttachment(w, r, rt)
	case routes.KindListPageVersions:
		s.listPageVersions(w, r, rt)
	case routes.KindShowPageVersion:
		s.showPageVersion(w, r, rt)
	default:
		writeError(w, r, dto.NotFound("route"))
	}
}

func (s *Server) listWebs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stubs, err := s.webs.List()
	s.mu.Unlock()
	if err != nil {
		writeError(w, r, storeError(err, "web"))
		return
	}
	if stubs == nil {
		stubs = []wiki.WebStub{}
	}
	writeJSON(w, r, http.StatusOK, stubs)
}

func (s *Server) createWeb(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWebRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	s.mu.Lock()
	_, err := s.webs.Create(req.Name)
	s.mu.Unlock()
	if err != nil {
		writeError(w, r, storeError(err, "web"))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) listPages(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	s.mu.Lock()
	web, apiErr := s.resolveWeb(rt.WebName)
	var stubs []wiki.PageStub
	var err error
	if apiErr == nil {
		stubs, err = web.ListPages()
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err != nil {
		writeError(w, r, storeError(err, "page"))
		return
	}
	if stubs == nil {
		stubs = []wiki.PageStub{}
	}
	writeJSON(w, r, http.StatusOK, stubs)
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	var req dto.PageDetailRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	s.mu.Lock()
	web, apiErr := s.resolveWeb(rt.WebName)
	var err error
	if apiErr == nil {
		err = web.NewPage(detailFromRequest(req)).Create()
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err != nil {
		writeError(w, r, storeError(err, "page"))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) showPage(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	s.mu.Lock()
	page, apiErr := s.resolvePage(rt.WebName, rt.PageName)
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeJSON(w, r, http.StatusOK, page.Detail)
}

func (s *Server) updatePage(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	var req dto.PageDetailRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	// The body's name must agree with the path before anything is written.
	if req.Name != rt.PageName {
		writeError(w, r, dto.BadRequest("page name does not match path"))
		return
	}
	s.mu.Lock()
	web, apiErr := s.resolveWeb(rt.WebName)
	var err error
	if apiErr == nil {
		err = web.NewPage(detailFromRequest(req)).Update()
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err != nil {
		writeError(w, r, storeError(err, "page"))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listAttachments(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	s.mu.Lock()
	page, apiErr := s.resolvePage(rt.WebName, rt.PageName)
	var stubs []wiki.AttachmentStub
	var err error
	if apiErr == nil {
		stubs, err = page.ListAttachments()
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err != nil {
		writeError(w, r, storeError(err, "attachment"))
		return
	}
	if stubs == nil {
		stubs = []wiki.AttachmentStub{}
	}
	writeJSON(w, r, http.StatusOK, stubs)
}

func (s *Server) createAttachment(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	var req dto.CreateAttachmentRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	s.mu.Lock()
	page, apiErr := s.resolvePage(rt.WebName, rt.PageName)
	var err error
	if apiErr == nil {
		err = page.SaveAttachment(wiki.AttachmentUpload{
			FileName:    req.FileName,
			EncodedData: req.EncodedData,
		})
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err != nil {
		writeError(w, r, storeError(err, "attachment"))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) serveAttachment(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	s.mu.Lock()
	page, apiErr := s.resolvePage(rt.WebName, rt.PageName)
	var data []byte
	mimeType := ""
	if apiErr == nil {
		var att *wiki.Attachment
		var err error
		att, err = page.GetAttachment(rt.AttachmentName)
		if err == nil {
			mimeType = att.MimeType()
			data, err = att.Data()
		}
		if err != nil {
			apiErr = storeError(err, "attachment")
		}
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write attachment data", "err", err)
	}
}

func (s *Server) listPageVersions(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	s.mu.Lock()
	page, apiErr := s.resolvePage(rt.WebName, rt.PageName)
	var stubs []wiki.VersionStub
	var err error
	if apiErr == nil {
		stubs, err = page.ListVersions()
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err != nil {
		writeError(w, r, storeError(err, "version"))
		return
	}
	if stubs == nil {
		stubs = []wiki.VersionStub{}
	}
	writeJSON(w, r, http.StatusOK, stubs)
}

func (s *Server) showPageVersion(w http.ResponseWriter, r *http.Request, rt routes.Route) {
	s.mu.Lock()
	page, apiErr := s.resolvePage(rt.WebName, rt.PageName)
	var detail wiki.PageDetail
	if apiErr == nil {
		var err error
		detail, err = page.GetVersion(rt.VersionHash)
		if err != nil {
			apiErr = storeError(err, "version")
		}
	}
	s.mu.Unlock()
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

// resolveWeb looks up a web by name. Call with s.mu held.
func (s *Server) resolveWeb(name string) (*wiki.Web, *dto.APIError) {
	web := s.webs.Get(name)
	if web == nil {
		return nil, dto.NotFound("web")
	}
	return web, nil
}

// resolvePage opens a page under a web. Call with s.mu held.
func (s *Server) resolvePage(webName, pageName string) (*wiki.Page, *dto.APIError) {
	web, apiErr := s.resolveWeb(webName)
	if apiErr != nil {
		return nil, apiErr
	}
	page, err := web.OpenPage(pageName)
	if err != nil {
		return nil, storeError(err, "page")
	}
	return page, nil
}

// storeError maps a store failure to its API error. 404 for absent
// resources, 400 for identity and input violations, 500 for everything
// else.
func storeError(err error, resource string) *dto.APIError {
	switch {
	case errors.Is(err, wiki.ErrNotFound):
		return dto.NotFound(resource)
	case errors.Is(err, wiki.ErrOverwrite):
		return dto.Conflict(resource)
	case errors.Is(err, wiki.ErrNameMismatch):
		return dto.BadRequest("page name does not match its directory").Wrap(err)
	case errors.Is(err, wiki.ErrInvalidPath), errors.Is(err, wiki.ErrInvalidUTF8):
		return dto.BadRequest("invalid " + resource + " name").Wrap(err)
	case errors.Is(err, wiki.ErrInvalidEncoding):
		return dto.InvalidFormat("encoded_data").Wrap(err)
	}
	return dto.StorageError(err)
}

// decodeBody reads and decodes a JSON request body into req, then runs its
// validation. The whole body is consumed before any store operation runs.
func decodeBody(r *http.Request, req interface{ Validate() error }) *dto.APIError {
	body, err := io.ReadAll(r.Body)
	if cerr := r.Body.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return dto.BadRequest("failed to read request body").Wrap(err)
	}
	d := json.NewDecoder(bytes.NewReader(body))
	d.DisallowUnknownFields()
	if err := d.Decode(req); err != nil {
		return dto.BadRequest("invalid request body").Wrap(err)
	}
	if err := req.Validate(); err != nil {
		var apiErr *dto.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return dto.BadRequest(err.Error())
	}
	return nil
}

func detailFromRequest(req dto.PageDetailRequest) wiki.PageDetail {
	return wiki.PageDetail{
		Name:    req.Name,
		Title:   req.Title,
		Content: req.Content,
		Parent:  req.Parent,
	}
}

// writeJSON writes a success body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "err", err)
	}
}

// writeError writes the error envelope and logs the failure.
func writeError(w http.ResponseWriter, r *http.Request, apiErr *dto.APIError) {
	if apiErr.StatusCode() >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "err", apiErr, "status", apiErr.StatusCode(), "code", apiErr.Code())
	} else {
		slog.DebugContext(r.Context(), "Request rejected", "err", apiErr, "status", apiErr.StatusCode(), "code", apiErr.Code())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode())
	resp := dto.ErrorResponse{Error: dto.ErrorDetails{Code: apiErr.Code(), Message: apiErr.Error()}}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode error response", "err", err)
	}
}
