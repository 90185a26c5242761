package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateTaskRequest struct {
	ClientID    string `json:"client_id"`
	AssigneeID  string `json:"assignee_employee_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

type UpdateTaskRequest struct {
	ClientID    *string `json:"client_id"`
	AssigneeID  *string `json:"assignee_employee_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type SetTaskStatusRequest struct {
	Status string `json:"status"`
}

type TaskDTO struct {
	TaskID       string  `json:"id"`
	ClientID     string  `json:"client_id"`
	ClientName   string  `json:"client_name,omitempty"`
	AssigneeID   string  `json:"assignee_employee_id,omitempty"`
	AssigneeName string  `json:"assignee_name,omitempty"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	DueDate      string  `json:"due_date"`
	Overdue      bool    `json:"overdue"`
	CompletedAt  *string `json:"completed_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type TaskResponse struct {
	Task TaskDTO `json:"task"`
}

type ListTasksResponse struct {
	Items []TaskDTO `json:"items"`
}

type DashboardStatsResponse struct {
	ActiveClients int `json:"active_clients"`
	OpenTasks     int `json:"open_tasks"`
	OverdueTasks  int `json:"overdue_tasks"`
}

type DocumentDTO struct {
	DocumentID string `json:"id"`
	TaskID     string `json:"task_id"`
	ClientID   string `json:"client_id"`
	UploadedBy string `json:"uploaded_by"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	UploadedAt string `json:"uploaded_at"`
}

type DocumentResponse struct {
	Document DocumentDTO `json:"document"`
}

type ListDocumentsResponse struct {
	Items []DocumentDTO `json:"items"`
}

type DocumentLinkResponse struct {
	DocumentID string  `json:"document_id"`
	FileName   string  `json:"file_name"`
	URL        string  `json:"url"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
	Degraded   bool    `json:"degraded"`
}

type SaveClientRequest struct {
	Name          string `json:"name"`
	ClientCode    string `json:"client_code"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	ContactEmail  string `json:"contact_email"`
	PANNumber     string `json:"pan_number"`
	GSTNumber     string `json:"gst_number"`
	Status        string `json:"status"`
	Notes         string `json:"notes"`
}

type ClientDTO struct {
	ClientID      string `json:"id"`
	Name          string `json:"name"`
	ClientCode    string `json:"client_code,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
	PANNumber     string `json:"pan_number,omitempty"`
	GSTNumber     string `json:"gst_number,omitempty"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type ClientResponse struct {
	Client ClientDTO `json:"client"`
}

type ListClientsResponse struct {
	Items []ClientDTO `json:"items"`
}

type SaveEmployeeRequest struct {
	UserID      string `json:"user_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
	Active      *bool  `json:"is_active"`
}

type EmployeeDTO struct {
	EmployeeID  string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Designation string `json:"designation"`
	Active      bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

type EmployeeResponse struct {
	Employee EmployeeDTO `json:"employee"`
}

type ListEmployeesResponse struct {
	Items []EmployeeDTO `json:"items"`
}
