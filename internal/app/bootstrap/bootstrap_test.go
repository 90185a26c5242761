package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtadapter "practicedesk/contexts/identity-access/role-authority/adapters/jwt"
	"practicedesk/contexts/realtime/sync-service/application"
	"practicedesk/contexts/realtime/sync-service/domain/entities"
	identityv1 "practicedesk/contracts/gen/identity/v1"
	"practicedesk/internal/platform/config"
)

const (
	testSecret = "bootstrap-test-secret"
	testIssuer = "practicedesk-test"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		ServiceName:           "practicedesk",
		HTTPPort:              "0",
		StoreDriver:           config.StoreMemory,
		ChangeFeed:            config.FeedInProcess,
		JWTSecret:             testSecret,
		JWTIssuer:             testIssuer,
		OfficeTimezone:        "UTC",
		StorageRoot:           t.TempDir(),
		StorageSigningKey:     "bootstrap-link-key",
		StoragePublicBaseURL:  "http://files.test",
		SignedLinkTTL:         time.Minute,
		RealtimeSessionBuffer: 64,
		WorkerPollInterval:    time.Minute,
		LogLevel:              "error",
		LogFormat:             "text",
	}
}

type apiClient struct {
	t      *testing.T
	base   string
	issuer *jwtadapter.Issuer
}

func (c apiClient) call(actor identityv1.Actor, method string, path string, body any, target any) int {
	c.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &payload)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	token, err := c.issuer.Issue(actor, time.Hour)
	if err != nil {
		c.t.Fatalf("issue token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if target != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func nextInvalidation(t *testing.T, session *application.Session) entities.Invalidation {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	item, err := session.Next(ctx)
	if err != nil {
		t.Fatalf("session %s: %v", session.ID(), err)
	}
	return item
}

func TestAPIWiresMemoryStoresAndLastWriteWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewAPI(ctx, memoryConfig(t))
	if err != nil {
		t.Fatalf("build api: %v", err)
	}
	defer app.Close()
	if err := app.realtime.Consumer.Start(ctx); err != nil {
		t.Fatalf("start consumer: %v", err)
	}

	ts := httptest.NewServer(app.server.Handler())
	defer ts.Close()
	client := apiClient{t: t, base: ts.URL, issuer: jwtadapter.NewIssuer(testSecret, testIssuer)}
	first := identityv1.Actor{ActorID: "user-meera", Role: identityv1.RoleManager, DisplayName: "Meera"}
	second := identityv1.Actor{ActorID: "user-karan", Role: identityv1.RoleManager, DisplayName: "Karan"}

	var created struct {
		Client struct {
			ID string `json:"id"`
		} `json:"client"`
	}
	if status := client.call(first, http.MethodPost, "/v1/clients", map[string]string{"name": "Acme Corp", "status": "active"}, &created); status != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d", status)
	}

	var invoice struct {
		Invoice struct {
			ID         string `json:"id"`
			ClientName string `json:"client_name"`
		} `json:"invoice"`
	}
	invoiceBody := map[string]any{
		"client_id":  created.Client.ID,
		"amount":     1500.0,
		"issue_date": "2030-01-01",
		"due_date":   "2030-01-31",
	}
	if status := client.call(first, http.MethodPost, "/v1/invoices", invoiceBody, &invoice); status != http.StatusCreated {
		t.Fatalf("create invoice: expected 201, got %d", status)
	}
	if status := client.call(first, http.MethodGet, "/v1/invoices/"+invoice.Invoice.ID, nil, &invoice); status != http.StatusOK {
		t.Fatalf("get invoice: expected 200, got %d", status)
	}
	if invoice.Invoice.ClientName != "Acme Corp" {
		t.Fatalf("expected billing to resolve client name, got %q", invoice.Invoice.ClientName)
	}

	subs := []entities.Subscription{{Collection: entities.CollectionTasks, Kind: entities.EventAll}}
	tabA, err := app.realtime.Hub.Connect("tab-a", subs)
	if err != nil {
		t.Fatalf("connect tab-a: %v", err)
	}
	tabB, err := app.realtime.Hub.Connect("tab-b", subs)
	if err != nil {
		t.Fatalf("connect tab-b: %v", err)
	}
	for _, session := range []*application.Session{tabA, tabB} {
		if got := nextInvalidation(t, session); got.Reason != entities.ReasonResync {
			t.Fatalf("expected initial resync, got %+v", got)
		}
	}

	var task struct {
		Task struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"task"`
	}
	taskBody := map[string]string{"client_id": created.Client.ID, "title": "GST filing", "due_date": "2030-03-31"}
	if status := client.call(first, http.MethodPost, "/v1/tasks", taskBody, &task); status != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d", status)
	}
	for _, session := range []*application.Session{tabA, tabB} {
		got := nextInvalidation(t, session)
		if got.RowID != task.Task.ID || got.Kind != entities.EventInsert {
			t.Fatalf("expected insert of %s, got %+v", task.Task.ID, got)
		}
	}

	path := "/v1/tasks/" + task.Task.ID
	if status := client.call(first, http.MethodPost, path+"/status", map[string]string{"status": "in_progress"}, nil); status != http.StatusOK {
		t.Fatalf("first status change: expected 200, got %d", status)
	}
	if status := client.call(second, http.MethodPost, path+"/status", map[string]string{"status": "waiting_on_client"}, nil); status != http.StatusOK {
		t.Fatalf("second status change: expected 200, got %d", status)
	}
	for _, session := range []*application.Session{tabA, tabB} {
		got := nextInvalidation(t, session)
		if got.RowID != task.Task.ID || got.Kind != entities.EventUpdate {
			t.Fatalf("expected update of %s, got %+v", task.Task.ID, got)
		}
	}

	if status := client.call(first, http.MethodGet, path, nil, &task); status != http.StatusOK {
		t.Fatalf("get task: expected 200, got %d", status)
	}
	if task.Task.Status != "waiting_on_client" {
		t.Fatalf("expected last write to win, got %q", task.Task.Status)
	}
}

func TestDeletingTaskKeepsItsInvoices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewAPI(ctx, memoryConfig(t))
	if err != nil {
		t.Fatalf("build api: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.server.Handler())
	defer ts.Close()
	client := apiClient{t: t, base: ts.URL, issuer: jwtadapter.NewIssuer(testSecret, testIssuer)}
	manager := identityv1.Actor{ActorID: "user-meera", Role: identityv1.RoleManager, DisplayName: "Meera"}

	var created struct {
		Client struct {
			ID string `json:"id"`
		} `json:"client"`
	}
	if status := client.call(manager, http.MethodPost, "/v1/clients", map[string]string{"name": "Acme Corp", "status": "active"}, &created); status != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d", status)
	}
	var task struct {
		Task struct {
			ID string `json:"id"`
		} `json:"task"`
	}
	taskBody := map[string]string{"client_id": created.Client.ID, "title": "Tax audit", "due_date": "2030-03-31"}
	if status := client.call(manager, http.MethodPost, "/v1/tasks", taskBody, &task); status != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d", status)
	}

	var invoice struct {
		Invoice struct {
			ID     string `json:"id"`
			TaskID string `json:"task_id"`
		} `json:"invoice"`
	}
	invoiceBody := map[string]any{
		"client_id":  created.Client.ID,
		"task_id":    task.Task.ID,
		"amount":     900.0,
		"issue_date": "2030-01-01",
		"due_date":   "2030-01-31",
	}
	if status := client.call(manager, http.MethodPost, "/v1/invoices", invoiceBody, &invoice); status != http.StatusCreated {
		t.Fatalf("create invoice: expected 201, got %d", status)
	}

	if status := client.call(manager, http.MethodDelete, "/v1/tasks/"+task.Task.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete task: expected 204, got %d", status)
	}
	if status := client.call(manager, http.MethodGet, "/v1/tasks/"+task.Task.ID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected deleted task to be gone, got %d", status)
	}

	invoice.Invoice.TaskID = ""
	if status := client.call(manager, http.MethodGet, "/v1/invoices/"+invoice.Invoice.ID, nil, &invoice); status != http.StatusOK {
		t.Fatalf("get invoice after task delete: expected 200, got %d", status)
	}
	if invoice.Invoice.TaskID != task.Task.ID {
		t.Fatalf("expected invoice to keep task reference %q, got %q", task.Task.ID, invoice.Invoice.TaskID)
	}
}

func TestAPIRequiresSessionSecret(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.JWTSecret = ""
	if _, err := NewAPI(context.Background(), cfg); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestWorkerRequiresPostgresStore(t *testing.T) {
	if _, err := NewWorker(context.Background(), memoryConfig(t)); err == nil {
		t.Fatalf("expected memory store to be rejected")
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9090": ":9090", ":7070": ":7070", " 8081 ": ":8081"}
	for input, want := range cases {
		if got := normalizeAddr(input); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := 0
	err := runEvery(ctx, time.Millisecond, func(context.Context) error {
		runs++
		if runs == 3 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
	if runs < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs)
	}
}
