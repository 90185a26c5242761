package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"practicedesk/contexts/practice-ops/engagement-service/application/commands"
	"practicedesk/contexts/practice-ops/engagement-service/application/queries"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	httptransport "practicedesk/contexts/practice-ops/engagement-service/transport/http"
)

const dateLayout = "2006-01-02"

type Handler struct {
	CreateTask     commands.CreateTaskUseCase
	UpdateTask     commands.UpdateTaskUseCase
	SetTaskStatus  commands.SetTaskStatusUseCase
	DeleteTask     commands.DeleteTaskUseCase
	UploadDocument commands.UploadDocumentUseCase
	DeleteDocument commands.DeleteDocumentUseCase
	SaveClient     commands.SaveClientUseCase
	DeleteClient   commands.DeleteClientUseCase
	SaveEmployee   commands.SaveEmployeeUseCase
	DeleteEmployee commands.DeleteEmployeeUseCase
	ListTasks      queries.ListTasksUseCase
	GetTask        queries.GetTaskUseCase
	DashboardStats queries.DashboardStatsUseCase
	ListDocuments  queries.ListDocumentsUseCase
	DocumentLink   queries.DocumentLinkUseCase
	ListClients    queries.ListClientsUseCase
	GetClient      queries.GetClientUseCase
	ListEmployees  queries.ListEmployeesUseCase
	GetEmployee    queries.GetEmployeeUseCase
	Logger         *slog.Logger
}

func (h Handler) CreateTaskHandler(ctx context.Context, actor ports.Actor, req httptransport.CreateTaskRequest) (httptransport.TaskResponse, error) {
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return httptransport.TaskResponse{}, domainerrors.ErrInvalidTaskInput
	}
	task, err := h.CreateTask.Execute(ctx, commands.CreateTaskCommand{
		Actor:       actor,
		ClientID:    req.ClientID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return httptransport.TaskResponse{Task: mapTask(queries.TaskView{Task: task})}, nil
}

func (h Handler) UpdateTaskHandler(
	ctx context.Context,
	actor ports.Actor,
	taskID string,
	req httptransport.UpdateTaskRequest,
) (httptransport.TaskResponse, error) {
	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := parseDate(*req.DueDate)
		if err != nil {
			return httptransport.TaskResponse{}, domainerrors.ErrInvalidTaskInput
		}
		dueDate = &parsed
	}
	task, err := h.UpdateTask.Execute(ctx, commands.UpdateTaskCommand{
		Actor:       actor,
		TaskID:      taskID,
		ClientID:    req.ClientID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return httptransport.TaskResponse{Task: mapTask(queries.TaskView{Task: task})}, nil
}

func (h Handler) SetTaskStatusHandler(
	ctx context.Context,
	actor ports.Actor,
	taskID string,
	req httptransport.SetTaskStatusRequest,
) (httptransport.TaskResponse, error) {
	task, err := h.SetTaskStatus.Execute(ctx, commands.SetTaskStatusCommand{
		Actor:  actor,
		TaskID: taskID,
		Status: req.Status,
	})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return httptransport.TaskResponse{Task: mapTask(queries.TaskView{Task: task})}, nil
}

func (h Handler) DeleteTaskHandler(ctx context.Context, actor ports.Actor, taskID string) error {
	return h.DeleteTask.Execute(ctx, commands.DeleteTaskCommand{Actor: actor, TaskID: taskID})
}

func (h Handler) ListTasksHandler(
	ctx context.Context,
	actor ports.Actor,
	status string,
	clientID string,
	search string,
) (httptransport.ListTasksResponse, error) {
	items, err := h.ListTasks.Execute(ctx, queries.ListTasksQuery{
		Actor:    actor,
		Status:   status,
		ClientID: clientID,
		Search:   search,
	})
	if err != nil {
		return httptransport.ListTasksResponse{}, err
	}
	result := make([]httptransport.TaskDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapTask(item))
	}
	return httptransport.ListTasksResponse{Items: result}, nil
}

func (h Handler) GetTaskHandler(ctx context.Context, actor ports.Actor, taskID string) (httptransport.TaskResponse, error) {
	item, err := h.GetTask.Execute(ctx, queries.GetTaskQuery{Actor: actor, TaskID: taskID})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return httptransport.TaskResponse{Task: mapTask(item)}, nil
}

func (h Handler) DashboardStatsHandler(ctx context.Context, actor ports.Actor) (httptransport.DashboardStatsResponse, error) {
	stats, err := h.DashboardStats.Execute(ctx, actor)
	if err != nil {
		return httptransport.DashboardStatsResponse{}, err
	}
	return httptransport.DashboardStatsResponse{
		ActiveClients: stats.ActiveClients,
		OpenTasks:     stats.OpenTasks,
		OverdueTasks:  stats.OverdueTasks,
	}, nil
}

func (h Handler) UploadDocumentHandler(
	ctx context.Context,
	actor ports.Actor,
	taskID string,
	fileName string,
	contentType string,
	content io.Reader,
) (httptransport.DocumentResponse, error) {
	document, err := h.UploadDocument.Execute(ctx, commands.UploadDocumentCommand{
		Actor:       actor,
		TaskID:      taskID,
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return httptransport.DocumentResponse{}, err
	}
	return httptransport.DocumentResponse{Document: mapDocument(document)}, nil
}

func (h Handler) ListDocumentsHandler(ctx context.Context, actor ports.Actor, taskID string) (httptransport.ListDocumentsResponse, error) {
	items, err := h.ListDocuments.Execute(ctx, actor, taskID)
	if err != nil {
		return httptransport.ListDocumentsResponse{}, err
	}
	result := make([]httptransport.DocumentDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapDocument(item))
	}
	return httptransport.ListDocumentsResponse{Items: result}, nil
}

func (h Handler) DocumentLinkHandler(ctx context.Context, actor ports.Actor, documentID string) (httptransport.DocumentLinkResponse, error) {
	link, err := h.DocumentLink.Execute(ctx, actor, documentID)
	if err != nil {
		return httptransport.DocumentLinkResponse{}, err
	}
	return httptransport.DocumentLinkResponse{
		DocumentID: link.DocumentID,
		FileName:   link.FileName,
		URL:        link.URL,
		ExpiresAt:  formatOptionalTime(link.ExpiresAt),
		Degraded:   link.Degraded,
	}, nil
}

func (h Handler) DeleteDocumentHandler(ctx context.Context, actor ports.Actor, documentID string) error {
	return h.DeleteDocument.Execute(ctx, commands.DeleteDocumentCommand{Actor: actor, DocumentID: documentID})
}

func (h Handler) ListClientsHandler(ctx context.Context, actor ports.Actor, status string, search string) (httptransport.ListClientsResponse, error) {
	items, err := h.ListClients.Execute(ctx, actor, status, search)
	if err != nil {
		return httptransport.ListClientsResponse{}, err
	}
	result := make([]httptransport.ClientDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapClient(item))
	}
	return httptransport.ListClientsResponse{Items: result}, nil
}

func (h Handler) GetClientHandler(ctx context.Context, actor ports.Actor, clientID string) (httptransport.ClientResponse, error) {
	item, err := h.GetClient.Execute(ctx, actor, clientID)
	if err != nil {
		return httptransport.ClientResponse{}, err
	}
	return httptransport.ClientResponse{Client: mapClient(item)}, nil
}

// SaveClientHandler creates a client when clientID is empty.
func (h Handler) SaveClientHandler(
	ctx context.Context,
	actor ports.Actor,
	clientID string,
	req httptransport.SaveClientRequest,
) (httptransport.ClientResponse, error) {
	item, err := h.SaveClient.Execute(ctx, commands.SaveClientCommand{
		Actor:    actor,
		ClientID: clientID,
		Fields: commands.ClientFields{
			Name:          req.Name,
			ClientCode:    req.ClientCode,
			ContactPerson: req.ContactPerson,
			ContactPhone:  req.ContactPhone,
			ContactEmail:  req.ContactEmail,
			PANNumber:     req.PANNumber,
			GSTNumber:     req.GSTNumber,
			Status:        req.Status,
			Notes:         req.Notes,
		},
	})
	if err != nil {
		return httptransport.ClientResponse{}, err
	}
	return httptransport.ClientResponse{Client: mapClient(item)}, nil
}

func (h Handler) DeleteClientHandler(ctx context.Context, actor ports.Actor, clientID string) error {
	return h.DeleteClient.Execute(ctx, commands.DeleteClientCommand{Actor: actor, ClientID: clientID})
}

func (h Handler) ListEmployeesHandler(ctx context.Context, actor ports.Actor, activeOnly bool) (httptransport.ListEmployeesResponse, error) {
	items, err := h.ListEmployees.Execute(ctx, actor, activeOnly)
	if err != nil {
		return httptransport.ListEmployeesResponse{}, err
	}
	result := make([]httptransport.EmployeeDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapEmployee(item))
	}
	return httptransport.ListEmployeesResponse{Items: result}, nil
}

func (h Handler) GetEmployeeHandler(ctx context.Context, actor ports.Actor, employeeID string) (httptransport.EmployeeResponse, error) {
	item, err := h.GetEmployee.Execute(ctx, actor, employeeID)
	if err != nil {
		return httptransport.EmployeeResponse{}, err
	}
	return httptransport.EmployeeResponse{Employee: mapEmployee(item)}, nil
}

// SaveEmployeeHandler creates an employee when employeeID is empty. New
// employees are active unless the request says otherwise.
func (h Handler) SaveEmployeeHandler(
	ctx context.Context,
	actor ports.Actor,
	employeeID string,
	req httptransport.SaveEmployeeRequest,
) (httptransport.EmployeeResponse, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	item, err := h.SaveEmployee.Execute(ctx, commands.SaveEmployeeCommand{
		Actor:      actor,
		EmployeeID: employeeID,
		Fields: commands.EmployeeFields{
			UserID:      req.UserID,
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			Designation: req.Designation,
			Active:      active,
		},
	})
	if err != nil {
		return httptransport.EmployeeResponse{}, err
	}
	return httptransport.EmployeeResponse{Employee: mapEmployee(item)}, nil
}

func (h Handler) DeleteEmployeeHandler(ctx context.Context, actor ports.Actor, employeeID string) error {
	return h.DeleteEmployee.Execute(ctx, commands.DeleteEmployeeCommand{Actor: actor, EmployeeID: employeeID})
}

func mapTask(view queries.TaskView) httptransport.TaskDTO {
	task := view.Task
	return httptransport.TaskDTO{
		TaskID:       task.TaskID,
		ClientID:     task.ClientID,
		ClientName:   view.ClientName,
		AssigneeID:   task.AssigneeID,
		AssigneeName: view.AssigneeName,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		DueDate:      task.DueDate.Format(dateLayout),
		Overdue:      view.Overdue,
		CompletedAt:  formatOptionalTime(task.CompletedAt),
		CreatedAt:    task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapDocument(item entities.Document) httptransport.DocumentDTO {
	return httptransport.DocumentDTO{
		DocumentID: item.DocumentID,
		TaskID:     item.TaskID,
		ClientID:   item.ClientID,
		UploadedBy: item.UploadedBy,
		FileName:   item.FileName,
		FileType:   item.FileType,
		UploadedAt: item.UploadedAt.UTC().Format(time.RFC3339),
	}
}

func mapClient(item entities.Client) httptransport.ClientDTO {
	return httptransport.ClientDTO{
		ClientID:      item.ClientID,
		Name:          item.Name,
		ClientCode:    item.ClientCode,
		ContactPerson: item.ContactPerson,
		ContactPhone:  item.ContactPhone,
		ContactEmail:  item.ContactEmail,
		PANNumber:     item.PANNumber,
		GSTNumber:     item.GSTNumber,
		Status:        string(item.Status),
		Notes:         item.Notes,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapEmployee(item entities.Employee) httptransport.EmployeeDTO {
	return httptransport.EmployeeDTO{
		EmployeeID:  item.EmployeeID,
		UserID:      item.UserID,
		FullName:    item.FullName,
		Email:       item.Email,
		Phone:       item.Phone,
		Designation: item.Designation,
		Active:      item.Active,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(raw))
}

func formatOptionalTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339)
	return &formatted
}
