package httpserver

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const maxUploadBytes = 32 << 20

func (s *Server) registerDocumentRoutes() {
	s.mux.HandleFunc("GET /v1/tasks/{task_id}/documents", s.handleListDocuments)
	s.mux.HandleFunc("POST /v1/tasks/{task_id}/documents", s.handleUploadDocument)
	s.mux.HandleFunc("GET /v1/documents/{document_id}/link", s.handleDocumentLink)
	s.mux.HandleFunc("DELETE /v1/documents/{document_id}", s.handleDeleteDocument)
	s.mux.HandleFunc("GET /v1/files/{object_path...}", s.handleServeFile)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.ListDocumentsHandler(r.Context(), actor, r.PathValue("task_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUploadDocument reads a multipart form with the file under "file".
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_upload", "request must be multipart form data within the size limit")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeEngagementError(w, http.StatusBadRequest, "missing_file", "form field \"file\" is required")
		return
	}
	defer file.Close()

	resp, err := s.engagement.Handler.UploadDocumentHandler(
		r.Context(),
		actor,
		r.PathValue("task_id"),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDocumentLink(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.DocumentLinkHandler(r.Context(), actor, r.PathValue("document_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.engagement.Handler.DeleteDocumentHandler(r.Context(), actor, r.PathValue("document_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleServeFile streams a stored object. A signed link token grants access
// on its own; without one the caller must be authenticated, which keeps the
// direct references handed out when signing degrades usable.
func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	if s.files == nil {
		writeEngagementError(w, http.StatusNotFound, "not_found", "file serving is not configured")
		return
	}
	objectPath := r.PathValue("object_path")
	downloadName := path.Base(objectPath)

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		name, err := s.files.VerifyLink(objectPath, token)
		if err != nil {
			writeEngagementError(w, http.StatusForbidden, "invalid_link", "download link is invalid or expired")
			return
		}
		if name != "" {
			downloadName = name
		}
	} else if _, ok := s.authenticate(w, r); !ok {
		return
	}

	file, err := s.files.Open(objectPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeEngagementError(w, http.StatusNotFound, "not_found", "file not found")
			return
		}
		writeEngagementError(w, http.StatusBadRequest, "invalid_path", "invalid file path")
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		writeEngagementError(w, http.StatusNotFound, "not_found", "file not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	http.ServeContent(w, r, downloadName, info.ModTime(), file)
}
