package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateTask(ctx context.Context, task entities.Task) error {
	row := taskModelFromEntity(task)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// UpdateTask overwrites every mutable column. Concurrent writers resolve by
// last write wins.
func (r *Repository) UpdateTask(ctx context.Context, task entities.Task) error {
	row := taskModelFromEntity(task)
	result := r.db.WithContext(ctx).
		Model(&taskModel{}).
		Where("id = ?", row.TaskID).
		Updates(map[string]any{
			"client_id":            row.ClientID,
			"assignee_employee_id": row.AssigneeID,
			"title":                row.Title,
			"description":          row.Description,
			"status":               row.Status,
			"priority":             row.Priority,
			"due_date":             row.DueDate,
			"completed_at":         row.CompletedAt,
			"updated_at":           row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTaskNotFound
	}
	return nil
}

func (r *Repository) GetTask(ctx context.Context, taskID string) (entities.Task, error) {
	var row taskModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(taskID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Task{}, domainerrors.ErrTaskNotFound
		}
		return entities.Task{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	tx := r.db.WithContext(ctx).Model(&taskModel{})
	if filter.ClientID != "" {
		tx = tx.Where("client_id = ?", filter.ClientID)
	}
	if filter.AssigneeID != "" {
		tx = tx.Where("assignee_employee_id = ?", filter.AssigneeID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var rows []taskModel
	if err := tx.Order("due_date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteTask(ctx context.Context, taskID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", taskID).Delete(&taskModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTaskNotFound
	}
	return nil
}

func (r *Repository) AddDocument(ctx context.Context, document entities.Document) error {
	row := documentModelFromEntity(document)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, documentID string) (entities.Document, error) {
	var row documentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(documentID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Document{}, domainerrors.ErrDocumentNotFound
		}
		return entities.Document{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListDocumentsByTask(ctx context.Context, taskID string) ([]entities.Document, error) {
	var rows []documentModel
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("uploaded_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Document, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteDocument(ctx context.Context, documentID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", documentID).Delete(&documentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrDocumentNotFound
	}
	return nil
}

func (r *Repository) DeleteDocumentsByTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&documentModel{}).Error
}

func (r *Repository) ObjectPathInUse(ctx context.Context, objectPath string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&documentModel{}).
		Where("object_path = ?", objectPath).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateClient(ctx context.Context, client entities.Client) error {
	row := clientModelFromEntity(client)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateClient(ctx context.Context, client entities.Client) error {
	row := clientModelFromEntity(client)
	result := r.db.WithContext(ctx).
		Model(&clientModel{}).
		Where("id = ?", row.ClientID).
		Updates(map[string]any{
			"name":           row.Name,
			"client_code":    row.ClientCode,
			"contact_person": row.ContactPerson,
			"contact_phone":  row.ContactPhone,
			"contact_email":  row.ContactEmail,
			"pan_number":     row.PANNumber,
			"gst_number":     row.GSTNumber,
			"status":         row.Status,
			"notes":          row.Notes,
			"updated_at":     row.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrDuplicateRecord
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrClientNotFound
	}
	return nil
}

func (r *Repository) GetClient(ctx context.Context, clientID string) (entities.Client, error) {
	var row clientModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(clientID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Client{}, domainerrors.ErrClientNotFound
		}
		return entities.Client{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListClients(ctx context.Context, filter ports.ClientFilter) ([]entities.Client, error) {
	tx := r.db.WithContext(ctx).Model(&clientModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where("name ILIKE ? OR client_code ILIKE ?", pattern, pattern)
	}
	var rows []clientModel
	if err := tx.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Client, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteClient(ctx context.Context, clientID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", clientID).Delete(&clientModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrClientNotFound
	}
	return nil
}

func (r *Repository) CreateEmployee(ctx context.Context, employee entities.Employee) error {
	row := employeeModelFromEntity(employee)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, employee entities.Employee) error {
	row := employeeModelFromEntity(employee)
	result := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Where("id = ?", row.EmployeeID).
		Updates(map[string]any{
			"user_id":     row.UserID,
			"full_name":   row.FullName,
			"email":       row.Email,
			"phone":       row.Phone,
			"designation": row.Designation,
			"is_active":   row.Active,
			"updated_at":  row.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrDuplicateRecord
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEmployeeNotFound
	}
	return nil
}

func (r *Repository) GetEmployee(ctx context.Context, employeeID string) (entities.Employee, error) {
	return r.firstEmployee(ctx, "id = ?", strings.TrimSpace(employeeID))
}

func (r *Repository) GetEmployeeByUserID(ctx context.Context, userID string) (entities.Employee, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Employee{}, domainerrors.ErrEmployeeNotFound
	}
	return r.firstEmployee(ctx, "user_id = ?", userID)
}

func (r *Repository) firstEmployee(ctx context.Context, where string, arg any) (entities.Employee, error) {
	var row employeeModel
	err := r.db.WithContext(ctx).Where(where, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Employee{}, domainerrors.ErrEmployeeNotFound
		}
		return entities.Employee{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListEmployees(ctx context.Context, activeOnly bool) ([]entities.Employee, error) {
	tx := r.db.WithContext(ctx).Model(&employeeModel{})
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	var rows []employeeModel
	if err := tx.Order("full_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Employee, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, employeeID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", employeeID).Delete(&employeeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEmployeeNotFound
	}
	return nil
}

type taskModel struct {
	TaskID      string     `gorm:"column:id;primaryKey"`
	ClientID    string     `gorm:"column:client_id"`
	AssigneeID  *string    `gorm:"column:assignee_employee_id"`
	Title       string     `gorm:"column:title"`
	Description string     `gorm:"column:description"`
	Status      string     `gorm:"column:status"`
	Priority    string     `gorm:"column:priority"`
	DueDate     time.Time  `gorm:"column:due_date;type:date"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (taskModel) TableName() string {
	return "tasks"
}

func taskModelFromEntity(item entities.Task) taskModel {
	return taskModel{
		TaskID:      strings.TrimSpace(item.TaskID),
		ClientID:    strings.TrimSpace(item.ClientID),
		AssigneeID:  optionalString(item.AssigneeID),
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		Status:      string(item.Status),
		Priority:    string(item.Priority),
		DueDate:     item.DueDate,
		CompletedAt: normalizeOptionalTime(item.CompletedAt),
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (m taskModel) toEntity() entities.Task {
	assigneeID := ""
	if m.AssigneeID != nil {
		assigneeID = *m.AssigneeID
	}
	return entities.Task{
		TaskID:      m.TaskID,
		ClientID:    m.ClientID,
		AssigneeID:  assigneeID,
		Title:       m.Title,
		Description: m.Description,
		Status:      entities.TaskStatus(m.Status),
		Priority:    entities.Priority(m.Priority),
		DueDate:     m.DueDate,
		CompletedAt: normalizeOptionalTime(m.CompletedAt),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type documentModel struct {
	DocumentID  string    `gorm:"column:id;primaryKey"`
	TaskID      string    `gorm:"column:task_id"`
	ClientID    string    `gorm:"column:client_id"`
	UploadedBy  string    `gorm:"column:uploaded_by"`
	FileName    string    `gorm:"column:file_name"`
	FileType    string    `gorm:"column:file_type"`
	ObjectPath  string    `gorm:"column:object_path"`
	LocationRef string    `gorm:"column:file_url"`
	UploadedAt  time.Time `gorm:"column:uploaded_at"`
}

func (documentModel) TableName() string {
	return "task_documents"
}

func documentModelFromEntity(item entities.Document) documentModel {
	return documentModel{
		DocumentID:  item.DocumentID,
		TaskID:      item.TaskID,
		ClientID:    item.ClientID,
		UploadedBy:  item.UploadedBy,
		FileName:    item.FileName,
		FileType:    item.FileType,
		ObjectPath:  item.ObjectPath,
		LocationRef: item.LocationRef,
		UploadedAt:  item.UploadedAt.UTC(),
	}
}

func (m documentModel) toEntity() entities.Document {
	return entities.Document{
		DocumentID:  m.DocumentID,
		TaskID:      m.TaskID,
		ClientID:    m.ClientID,
		UploadedBy:  m.UploadedBy,
		FileName:    m.FileName,
		FileType:    m.FileType,
		ObjectPath:  m.ObjectPath,
		LocationRef: m.LocationRef,
		UploadedAt:  m.UploadedAt.UTC(),
	}
}

type clientModel struct {
	ClientID      string    `gorm:"column:id;primaryKey"`
	Name          string    `gorm:"column:name"`
	ClientCode    string    `gorm:"column:client_code"`
	ContactPerson string    `gorm:"column:contact_person"`
	ContactPhone  string    `gorm:"column:contact_phone"`
	ContactEmail  string    `gorm:"column:contact_email"`
	PANNumber     string    `gorm:"column:pan_number"`
	GSTNumber     string    `gorm:"column:gst_number"`
	Status        string    `gorm:"column:status"`
	Notes         string    `gorm:"column:notes"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (clientModel) TableName() string {
	return "clients"
}

func clientModelFromEntity(item entities.Client) clientModel {
	return clientModel{
		ClientID:      strings.TrimSpace(item.ClientID),
		Name:          item.Name,
		ClientCode:    item.ClientCode,
		ContactPerson: item.ContactPerson,
		ContactPhone:  item.ContactPhone,
		ContactEmail:  item.ContactEmail,
		PANNumber:     item.PANNumber,
		GSTNumber:     item.GSTNumber,
		Status:        string(item.Status),
		Notes:         item.Notes,
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
}

func (m clientModel) toEntity() entities.Client {
	return entities.Client{
		ClientID:      m.ClientID,
		Name:          m.Name,
		ClientCode:    m.ClientCode,
		ContactPerson: m.ContactPerson,
		ContactPhone:  m.ContactPhone,
		ContactEmail:  m.ContactEmail,
		PANNumber:     m.PANNumber,
		GSTNumber:     m.GSTNumber,
		Status:        entities.ClientStatus(m.Status),
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type employeeModel struct {
	EmployeeID  string    `gorm:"column:id;primaryKey"`
	UserID      *string   `gorm:"column:user_id"`
	FullName    string    `gorm:"column:full_name"`
	Email       string    `gorm:"column:email"`
	Phone       string    `gorm:"column:phone"`
	Designation string    `gorm:"column:designation"`
	Active      bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (employeeModel) TableName() string {
	return "employees"
}

func employeeModelFromEntity(item entities.Employee) employeeModel {
	return employeeModel{
		EmployeeID:  strings.TrimSpace(item.EmployeeID),
		UserID:      optionalString(item.UserID),
		FullName:    item.FullName,
		Email:       item.Email,
		Phone:       item.Phone,
		Designation: item.Designation,
		Active:      item.Active,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (m employeeModel) toEntity() entities.Employee {
	userID := ""
	if m.UserID != nil {
		userID = *m.UserID
	}
	return entities.Employee{
		EmployeeID:  m.EmployeeID,
		UserID:      userID,
		FullName:    m.FullName,
		Email:       m.Email,
		Phone:       m.Phone,
		Designation: m.Designation,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
