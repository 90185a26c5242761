package httpserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	identityv1 "practicedesk/contracts/gen/identity/v1"
)

func (s testServer) upload(t *testing.T, taskID string, actor identityv1.Actor, fileName string, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/"+taskID+"/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, actor))
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func TestUploadAllowedForAssigneeEvenWhenOverdue(t *testing.T) {
	server := newTestServer(t)
	if rr := server.upload(t, "task-late", staffActor, "ledger.xlsx", "numbers"); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for assignee upload, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := server.upload(t, "task-late", otherStaff, "ledger.xlsx", "numbers"); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-assignee upload, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr := server.do(t, http.MethodGet, "/v1/tasks/task-late/documents", &managerActor, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	list := decodeBody[struct {
		Items []struct {
			DocumentID string `json:"id"`
		} `json:"items"`
	}](t, rr)
	if len(list.Items) != 1 {
		t.Fatalf("expected one document, got %d", len(list.Items))
	}

	rr = server.do(t, http.MethodGet, "/v1/documents/"+list.Items[0].DocumentID+"/link", &staffActor, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for link, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/task-open/documents", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+server.token(t, staffActor))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFileServingNeedsTokenOrSession(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	objectPath := "Acme_Corp/GST_filing/return.pdf"
	if _, err := server.files.Upload(ctx, objectPath, strings.NewReader("pdf-bytes"), "application/pdf"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	signed, err := server.files.SignedURL(ctx, objectPath, "GST return.pdf", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	target := "/v1/files/" + objectPath

	if rr := server.do(t, http.MethodGet, target, nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token or session, got %d", rr.Code)
	}
	if rr := server.do(t, http.MethodGet, target+"?token=forged", nil, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for forged token, got %d", rr.Code)
	}

	rr := server.do(t, http.MethodGet, target+"?"+parsed.RawQuery, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for signed link, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="GST return.pdf"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if rr.Body.String() != "pdf-bytes" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	rr = server.do(t, http.MethodGet, target, &staffActor, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for direct reference with session, got %d", rr.Code)
	}

	if rr := server.do(t, http.MethodGet, "/v1/files/Acme_Corp/missing.pdf", &staffActor, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing file, got %d", rr.Code)
	}
}
