package httpserver

import (
	"net/http"
	"testing"
)

func TestTasksRequireAuthentication(t *testing.T) {
	server := newTestServer(t)
	rr := server.do(t, http.MethodGet, "/v1/tasks", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStaffCannotCreateOrDeleteTasks(t *testing.T) {
	server := newTestServer(t)
	body := map[string]string{"client_id": "client-1", "title": "Payroll", "due_date": "2030-01-31"}
	if rr := server.do(t, http.MethodPost, "/v1/tasks", &staffActor, body); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff create, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := server.do(t, http.MethodDelete, "/v1/tasks/task-open", &staffActor, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff delete, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := server.do(t, http.MethodPost, "/v1/tasks", &managerActor, body); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for manager create, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOverdueTaskStatusIsLockedForStaff(t *testing.T) {
	server := newTestServer(t)
	body := map[string]string{"status": "completed"}

	rr := server.do(t, http.MethodPost, "/v1/tasks/task-late/status", &staffActor, body)
	if rr.Code != http.StatusLocked {
		t.Fatalf("expected 423 for overdue task, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeBody[map[string]string](t, rr); resp["code"] != "overdue_locked" {
		t.Fatalf("unexpected error body: %v", resp)
	}

	rr = server.do(t, http.MethodPost, "/v1/tasks/task-late/status", &managerActor, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected manager to bypass the lock, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStatusChangeLimitedToAssignee(t *testing.T) {
	server := newTestServer(t)
	body := map[string]string{"status": "Waiting for client"}

	if rr := server.do(t, http.MethodPost, "/v1/tasks/task-open/status", &otherStaff, body); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-assignee, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr := server.do(t, http.MethodPost, "/v1/tasks/task-open/status", &staffActor, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for assignee, got %d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[struct {
		Task struct {
			Status string `json:"status"`
		} `json:"task"`
	}](t, rr)
	if resp.Task.Status != "waiting_on_client" {
		t.Fatalf("unexpected status %q", resp.Task.Status)
	}
}

func TestInvalidStatusIsBadRequest(t *testing.T) {
	server := newTestServer(t)
	rr := server.do(t, http.MethodPost, "/v1/tasks/task-open/status", &managerActor, map[string]string{"status": "archived"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownTaskIsNotFound(t *testing.T) {
	server := newTestServer(t)
	rr := server.do(t, http.MethodGet, "/v1/tasks/task-missing", &managerActor, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStaffTaskListIsScoped(t *testing.T) {
	server := newTestServer(t)
	rr := server.do(t, http.MethodGet, "/v1/tasks", &otherStaff, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[struct {
		Items []map[string]any `json:"items"`
	}](t, rr)
	if len(resp.Items) != 0 {
		t.Fatalf("staff without assignments should see no tasks, got %d", len(resp.Items))
	}

	rr = server.do(t, http.MethodGet, "/v1/dashboard", &managerActor, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from dashboard, got %d", rr.Code)
	}
	stats := decodeBody[map[string]int](t, rr)
	if stats["open_tasks"] != 2 || stats["overdue_tasks"] != 1 || stats["active_clients"] != 1 {
		t.Fatalf("unexpected dashboard stats: %v", stats)
	}
}

func TestLookupMutationsRequireCapabilities(t *testing.T) {
	server := newTestServer(t)
	client := map[string]string{"name": "Beta LLP"}
	if rr := server.do(t, http.MethodPost, "/v1/clients", &staffActor, client); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff client create, got %d", rr.Code)
	}
	if rr := server.do(t, http.MethodPost, "/v1/clients", &managerActor, client); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for manager client create, got %d body=%s", rr.Code, rr.Body.String())
	}
	employee := map[string]string{"full_name": "Kiran", "email": "kiran@desk.local"}
	if rr := server.do(t, http.MethodPost, "/v1/employees", &staffActor, employee); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff employee create, got %d", rr.Code)
	}
	if rr := server.do(t, http.MethodGet, "/v1/employees?active=true", &staffActor, nil); rr.Code != http.StatusOK {
		t.Fatalf("expected staff to list employees, got %d", rr.Code)
	}
}
