package engagementservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"practicedesk/contexts/practice-ops/engagement-service/adapters/memory"
	"practicedesk/contexts/practice-ops/engagement-service/application/commands"
	"practicedesk/contexts/practice-ops/engagement-service/application/queries"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

type rolePolicy struct{}

func (rolePolicy) CapabilitiesOf(actor ports.Actor) (ports.Capabilities, error) {
	switch actor.Role {
	case "admin", "manager":
		return ports.Capabilities{
			CanManageClients:             true,
			CanManageStaff:               true,
			CanAssignTasks:               true,
			CanEditAnyTask:               true,
			CanManageBilling:             true,
			CanEditOwnAssignedTaskStatus: true,
		}, nil
	case "staff":
		return ports.Capabilities{CanEditOwnAssignedTaskStatus: true}, nil
	default:
		return ports.Capabilities{}, errors.New("unknown role")
	}
}

var (
	manager  = ports.Actor{ActorID: "user-manager", Role: "manager"}
	assignee = ports.Actor{ActorID: "user-asha", Role: "staff"}
	outsider = ports.Actor{ActorID: "user-ravi", Role: "staff"}
)

func newTestModule(t *testing.T) Module {
	t.Helper()
	return NewInMemoryModule(testSeed(), rolePolicy{}, nil, time.UTC, nil)
}

func testSeed() memory.Seed {
	created := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	return memory.Seed{
		Clients: []entities.Client{
			{ClientID: "client-1", Name: "Acme Corp", Status: entities.ClientStatusActive, CreatedAt: created},
			{ClientID: "client-2", Name: "Dormant Ltd", Status: entities.ClientStatusInactive, CreatedAt: created},
		},
		Employees: []entities.Employee{
			{EmployeeID: "emp-asha", UserID: "user-asha", FullName: "Asha", Email: "asha@desk.local", Active: true},
			{EmployeeID: "emp-ravi", UserID: "user-ravi", FullName: "Ravi", Email: "ravi@desk.local", Active: true},
		},
		Tasks: []entities.Task{
			{
				TaskID:     "task-1",
				ClientID:   "client-1",
				AssigneeID: "emp-asha",
				Title:      "Annual Audit",
				Status:     entities.TaskStatusInProgress,
				Priority:   entities.PriorityMedium,
				DueDate:    time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
				CreatedAt:  created,
				UpdatedAt:  created,
			},
		},
	}
}

func TestSetTaskStatusHonoursDueDayBoundary(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	module.Store.SetNow(time.Date(2024, time.January, 10, 23, 59, 58, 0, time.UTC))
	task, err := module.Handler.SetTaskStatus.Execute(ctx, commands.SetTaskStatusCommand{
		Actor: assignee, TaskID: "task-1", Status: "Completed",
	})
	if err != nil {
		t.Fatalf("expected assignee to complete task on its due day, got %v", err)
	}
	if task.Status != entities.TaskStatusCompleted || task.CompletedAt == nil {
		t.Fatalf("expected completed task with completed_at, got %+v", task)
	}

	module.Store.SetNow(time.Date(2024, time.January, 11, 0, 0, 1, 0, time.UTC))
	_, err = module.Handler.SetTaskStatus.Execute(ctx, commands.SetTaskStatusCommand{
		Actor: assignee, TaskID: "task-1", Status: "in_progress",
	})
	if !errors.Is(err, domainerrors.ErrOverdueLocked) {
		t.Fatalf("expected overdue lock, got %v", err)
	}

	task, err = module.Handler.SetTaskStatus.Execute(ctx, commands.SetTaskStatusCommand{
		Actor: manager, TaskID: "task-1", Status: "in_progress",
	})
	if err != nil {
		t.Fatalf("expected manager to bypass the lock, got %v", err)
	}
	if task.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared after reopening")
	}

	stored, _ := module.Store.GetTask(ctx, "task-1")
	if stored.Status != entities.TaskStatusInProgress {
		t.Fatalf("expected persisted status in_progress, got %s", stored.Status)
	}
}

func TestSetTaskStatusRejectsNonAssigneeBeforeLock(t *testing.T) {
	module := newTestModule(t)
	module.Store.SetNow(time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC))

	_, err := module.Handler.SetTaskStatus.Execute(context.Background(), commands.SetTaskStatusCommand{
		Actor: outsider, TaskID: "task-1", Status: "completed",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for non-assignee, got %v", err)
	}
	if errors.Is(err, domainerrors.ErrOverdueLocked) {
		t.Fatalf("expected authorization to be checked before the lock")
	}
}

func TestSetTaskStatusUsesEmployeeClaim(t *testing.T) {
	module := newTestModule(t)
	module.Store.SetNow(time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC))

	actor := ports.Actor{ActorID: "user-unlinked", Role: "staff", EmployeeID: "emp-asha"}
	if _, err := module.Handler.SetTaskStatus.Execute(context.Background(), commands.SetTaskStatusCommand{
		Actor: actor, TaskID: "task-1", Status: "waiting_on_client",
	}); err != nil {
		t.Fatalf("expected employee claim to identify the assignee, got %v", err)
	}
}

func TestSetTaskStatusPublishesChange(t *testing.T) {
	module := newTestModule(t)
	module.Store.SetNow(time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC))

	if _, err := module.Handler.SetTaskStatus.Execute(context.Background(), commands.SetTaskStatusCommand{
		Actor: assignee, TaskID: "task-1", Status: "completed",
	}); err != nil {
		t.Fatalf("set status: %v", err)
	}
	events := module.Store.PublishedEvents()
	if len(events) != 1 {
		t.Fatalf("expected one change notification, got %d", len(events))
	}
	if events[0].EventType != "tasks.update" || events[0].RowID != "task-1" || events[0].ActorID != assignee.ActorID {
		t.Fatalf("unexpected change notification %+v", events[0])
	}
}

func TestStaffCannotCreateOrDeleteTasks(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	_, err := module.Handler.CreateTask.Execute(ctx, commands.CreateTaskCommand{
		Actor: assignee, ClientID: "client-1", Title: "GST filing", DueDate: time.Now(),
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden create, got %v", err)
	}
	err = module.Handler.DeleteTask.Execute(ctx, commands.DeleteTaskCommand{Actor: assignee, TaskID: "task-1"})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
}

func TestCreateTaskValidatesReferences(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	due := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

	_, err := module.Handler.CreateTask.Execute(ctx, commands.CreateTaskCommand{
		Actor: manager, ClientID: "client-missing", Title: "GST filing", DueDate: due,
	})
	if !errors.Is(err, domainerrors.ErrClientNotFound) {
		t.Fatalf("expected missing client error, got %v", err)
	}

	task, err := module.Handler.CreateTask.Execute(ctx, commands.CreateTaskCommand{
		Actor: manager, ClientID: "client-1", AssigneeID: "emp-ravi", Title: "GST filing", DueDate: due,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != entities.TaskStatusNotStarted || task.Priority != entities.PriorityMedium {
		t.Fatalf("unexpected defaults %s/%s", task.Status, task.Priority)
	}
	if task.CompletedAt != nil {
		t.Fatalf("expected no completed_at on a new task")
	}
}

func TestDeleteTaskRemovesDocumentsFirst(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	module.Store.SetNow(time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC))

	document, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: assignee, TaskID: "task-1", FileName: "ledger.pdf", ContentType: "application/pdf",
		Content: strings.NewReader("ledger"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if document.ObjectPath != "Acme_Corp/Annual_Audit/ledger.pdf" {
		t.Fatalf("unexpected object path %q", document.ObjectPath)
	}

	if err := module.Handler.DeleteTask.Execute(ctx, commands.DeleteTaskCommand{Actor: manager, TaskID: "task-1"}); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := module.Store.GetDocument(ctx, document.DocumentID); !errors.Is(err, domainerrors.ErrDocumentNotFound) {
		t.Fatalf("expected document to be removed with its task, got %v", err)
	}
	if _, exists := module.Objects.Object(document.ObjectPath); exists {
		t.Fatalf("expected stored object to be removed")
	}

	events := module.Store.PublishedEvents()
	last := events[len(events)-1]
	previous := events[len(events)-2]
	if previous.EventType != "documents.delete" || last.EventType != "tasks.delete" {
		t.Fatalf("expected document delete before task delete, got %s then %s", previous.EventType, last.EventType)
	}
}

func TestUploadDocumentRules(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	module.Store.SetNow(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))

	if _, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: assignee, TaskID: "task-1", FileName: "late.pdf", Content: strings.NewReader("x"),
	}); err != nil {
		t.Fatalf("expected overdue task to accept uploads from the assignee, got %v", err)
	}
	_, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: outsider, TaskID: "task-1", FileName: "x.pdf", Content: strings.NewReader("x"),
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden upload for non-assignee, got %v", err)
	}

	module.Objects.FailUploads = true
	_, err = module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: manager, TaskID: "task-1", FileName: "y.pdf", Content: strings.NewReader("y"),
	})
	if !errors.Is(err, domainerrors.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestDocumentLinkFallsBackWhenSigningFails(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	document, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: manager, TaskID: "task-1", FileName: "ledger.pdf", Content: strings.NewReader("ledger"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	link, err := module.Handler.DocumentLink.Execute(ctx, assignee, document.DocumentID)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if link.Degraded || link.ExpiresAt == nil || !strings.Contains(link.URL, "name=ledger.pdf") {
		t.Fatalf("expected signed link, got %+v", link)
	}

	module.Objects.FailSigning = true
	link, err = module.Handler.DocumentLink.Execute(ctx, assignee, document.DocumentID)
	if err != nil {
		t.Fatalf("expected degraded link instead of error, got %v", err)
	}
	if !link.Degraded || link.URL != document.LocationRef {
		t.Fatalf("expected direct reference fallback, got %+v", link)
	}
}

func TestDeleteDocumentAllowsUploaderOnly(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	document, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: assignee, TaskID: "task-1", FileName: "notes.txt", Content: strings.NewReader("n"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	err = module.Handler.DeleteDocument.Execute(ctx, commands.DeleteDocumentCommand{Actor: outsider, DocumentID: document.DocumentID})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := module.Handler.DeleteDocument.Execute(ctx, commands.DeleteDocumentCommand{Actor: assignee, DocumentID: document.DocumentID}); err != nil {
		t.Fatalf("expected uploader to delete, got %v", err)
	}
}

func TestListTasksScopesStaffToAssignments(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	mine, err := module.Handler.ListTasks.Execute(ctx, queries.ListTasksQuery{Actor: assignee})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].ClientName != "Acme Corp" || mine[0].AssigneeName != "Asha" {
		t.Fatalf("unexpected assignee listing %+v", mine)
	}
	others, err := module.Handler.ListTasks.Execute(ctx, queries.ListTasksQuery{Actor: outsider})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(others) != 0 {
		t.Fatalf("expected no tasks for another staff member, got %d", len(others))
	}
	unlinked, err := module.Handler.ListTasks.Execute(ctx, queries.ListTasksQuery{Actor: ports.Actor{ActorID: "user-new", Role: "staff"}})
	if err != nil || len(unlinked) != 0 {
		t.Fatalf("expected empty list for staff without employee record, got %d (%v)", len(unlinked), err)
	}
}

func TestDashboardStats(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	module.Store.SetNow(time.Date(2024, time.January, 12, 9, 0, 0, 0, time.UTC))

	stats, err := module.Handler.DashboardStats.Execute(ctx, manager)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveClients != 1 || stats.OpenTasks != 1 || stats.OverdueTasks != 1 {
		t.Fatalf("unexpected manager stats %+v", stats)
	}

	stats, err = module.Handler.DashboardStats.Execute(ctx, outsider)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveClients != 0 || stats.OpenTasks != 0 || stats.OverdueTasks != 0 {
		t.Fatalf("expected empty staff stats, got %+v", stats)
	}
}

func TestLookupMutationsRequireCapabilities(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	_, err := module.Handler.SaveClient.Execute(ctx, commands.SaveClientCommand{
		Actor: assignee, Fields: commands.ClientFields{Name: "New Client"},
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden client save, got %v", err)
	}
	employee, err := module.Handler.SaveEmployee.Execute(ctx, commands.SaveEmployeeCommand{
		Actor: manager, Fields: commands.EmployeeFields{FullName: "Meera", Email: "Meera@Desk.local", Active: true},
	})
	if err != nil {
		t.Fatalf("save employee: %v", err)
	}
	if employee.Designation != entities.DefaultDesignation || employee.Email != "meera@desk.local" {
		t.Fatalf("unexpected employee defaults %+v", employee)
	}
}

func TestDeleteDocumentKeepsObjectSharedWithAnotherDocument(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	first, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: assignee, TaskID: "task-1", FileName: "ledger.pdf", Content: strings.NewReader("v1"),
	})
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: assignee, TaskID: "task-1", FileName: "ledger.pdf", Content: strings.NewReader("v2"),
	})
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if first.ObjectPath != second.ObjectPath {
		t.Fatalf("expected same-name uploads to share a path, got %q and %q", first.ObjectPath, second.ObjectPath)
	}

	if err := module.Handler.DeleteDocument.Execute(ctx, commands.DeleteDocumentCommand{Actor: assignee, DocumentID: first.DocumentID}); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	payload, exists := module.Objects.Object(second.ObjectPath)
	if !exists || string(payload) != "v2" {
		t.Fatalf("expected object to survive while another document references it, got %q exists=%v", payload, exists)
	}

	if err := module.Handler.DeleteDocument.Execute(ctx, commands.DeleteDocumentCommand{Actor: assignee, DocumentID: second.DocumentID}); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	if _, exists := module.Objects.Object(second.ObjectPath); exists {
		t.Fatalf("expected object removed with its last document")
	}
}

func TestDeleteTaskRemovesSharedObject(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	module.Store.SetNow(time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC))

	kept, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor: manager, TaskID: "task-1", FileName: "ledger.pdf", Content: strings.NewReader("kept"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	for _, name := range []string{"a.pdf", "a.pdf"} {
		if _, err := module.Handler.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
			Actor: manager, TaskID: "task-1", FileName: name, Content: strings.NewReader("dup"),
		}); err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
	}
	if err := module.Handler.DeleteDocument.Execute(ctx, commands.DeleteDocumentCommand{Actor: manager, DocumentID: kept.DocumentID}); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if err := module.Handler.DeleteTask.Execute(ctx, commands.DeleteTaskCommand{Actor: manager, TaskID: "task-1"}); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, exists := module.Objects.Object("Acme_Corp/Annual_Audit/a.pdf"); exists {
		t.Fatalf("expected shared object removed once every document of the task is gone")
	}
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(context.Context, string, ports.EventEnvelope) error {
	p.calls++
	return errors.New("feed unavailable")
}

func TestSetTaskStatusPersistsWhenPublishFails(t *testing.T) {
	publisher := &failingPublisher{}
	module := NewInMemoryModule(testSeed(), rolePolicy{}, publisher, time.UTC, nil)
	module.Store.SetNow(time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := module.Handler.SetTaskStatus.Execute(ctx, commands.SetTaskStatusCommand{
		Actor: assignee, TaskID: "task-1", Status: "completed",
	}); err != nil {
		t.Fatalf("expected status change to succeed despite feed outage, got %v", err)
	}
	task, err := module.Store.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != entities.TaskStatusCompleted {
		t.Fatalf("expected completed task, got %s", task.Status)
	}
	if publisher.calls != 1 {
		t.Fatalf("expected one publish attempt, got %d", publisher.calls)
	}
}
