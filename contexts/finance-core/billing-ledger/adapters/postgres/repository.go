package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const invoiceNumberConstraint = "invoices_invoice_number_key"

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

func (r *Repository) CreateInvoice(ctx context.Context, invoice entities.Invoice) error {
	row := invoiceModelFromEntity(invoice)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == invoiceNumberConstraint {
				return domainerrors.ErrDuplicateInvoiceNumber
			}
			return domainerrors.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// UpdateInvoice overwrites every mutable column; concurrent edits resolve by
// last write wins.
func (r *Repository) UpdateInvoice(ctx context.Context, invoice entities.Invoice) error {
	row := invoiceModelFromEntity(invoice)
	result := r.db.WithContext(ctx).
		Model(&invoiceModel{}).
		Where("id = ?", row.InvoiceID).
		Updates(map[string]any{
			"client_id":   row.ClientID,
			"task_id":     row.TaskID,
			"amount":      row.Amount,
			"status":      row.Status,
			"issue_date":  row.IssueDate,
			"due_date":    row.DueDate,
			"paid_date":   row.PaidDate,
			"description": row.Description,
			"notes":       row.Notes,
			"updated_at":  row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvoiceNotFound
	}
	return nil
}

func (r *Repository) GetInvoice(ctx context.Context, invoiceID string) (entities.Invoice, error) {
	var row invoiceModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(invoiceID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Invoice{}, domainerrors.ErrInvoiceNotFound
		}
		return entities.Invoice{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListInvoices(ctx context.Context, filter ports.InvoiceFilter) ([]entities.Invoice, error) {
	tx := r.db.WithContext(ctx).Model(&invoiceModel{})
	if filter.ClientID != "" {
		tx = tx.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	var rows []invoiceModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Invoice, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", invoiceID).Delete(&invoiceModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvoiceNotFound
	}
	return nil
}

func (r *Repository) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&invoiceModel{}).
		Where("invoice_number = ?", number).
		Count(&count).
		Error
	return count > 0, err
}

func (r *Repository) AddPayment(ctx context.Context, payment entities.Payment) error {
	row := paymentModelFromEntity(payment)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainerrors.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *Repository) ListPayments(ctx context.Context, invoiceID string) ([]entities.Payment, error) {
	tx := r.db.WithContext(ctx).Model(&paymentModel{})
	if invoiceID != "" {
		tx = tx.Where("invoice_id = ?", invoiceID)
	}
	var rows []paymentModel
	if err := tx.Order("payment_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Payment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type invoiceModel struct {
	InvoiceID   string     `gorm:"column:id;primaryKey"`
	Number      string     `gorm:"column:invoice_number"`
	ClientID    *string    `gorm:"column:client_id"`
	TaskID      *string    `gorm:"column:task_id"`
	Amount      float64    `gorm:"column:amount"`
	Status      string     `gorm:"column:status"`
	IssueDate   time.Time  `gorm:"column:issue_date;type:date"`
	DueDate     time.Time  `gorm:"column:due_date;type:date"`
	PaidDate    *time.Time `gorm:"column:paid_date"`
	Description string     `gorm:"column:description"`
	Notes       string     `gorm:"column:notes"`
	CreatedBy   string     `gorm:"column:created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (invoiceModel) TableName() string {
	return "invoices"
}

func invoiceModelFromEntity(item entities.Invoice) invoiceModel {
	return invoiceModel{
		InvoiceID:   strings.TrimSpace(item.InvoiceID),
		Number:      item.Number,
		ClientID:    optionalString(item.ClientID),
		TaskID:      optionalString(item.TaskID),
		Amount:      item.Amount,
		Status:      string(item.Status),
		IssueDate:   item.IssueDate,
		DueDate:     item.DueDate,
		PaidDate:    normalizeOptionalTime(item.PaidDate),
		Description: item.Description,
		Notes:       item.Notes,
		CreatedBy:   item.CreatedBy,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (m invoiceModel) toEntity() entities.Invoice {
	return entities.Invoice{
		InvoiceID:   m.InvoiceID,
		Number:      m.Number,
		ClientID:    derefString(m.ClientID),
		TaskID:      derefString(m.TaskID),
		Amount:      m.Amount,
		Status:      entities.InvoiceStatus(m.Status),
		IssueDate:   m.IssueDate,
		DueDate:     m.DueDate,
		PaidDate:    normalizeOptionalTime(m.PaidDate),
		Description: m.Description,
		Notes:       m.Notes,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type paymentModel struct {
	PaymentID   string    `gorm:"column:id;primaryKey"`
	InvoiceID   string    `gorm:"column:invoice_id"`
	Amount      float64   `gorm:"column:amount"`
	PaymentDate time.Time `gorm:"column:payment_date"`
	Method      string    `gorm:"column:payment_method"`
	Reference   string    `gorm:"column:reference_number"`
	Notes       string    `gorm:"column:notes"`
	CreatedBy   string    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (paymentModel) TableName() string {
	return "payments"
}

func paymentModelFromEntity(item entities.Payment) paymentModel {
	return paymentModel{
		PaymentID:   item.PaymentID,
		InvoiceID:   item.InvoiceID,
		Amount:      item.Amount,
		PaymentDate: item.PaymentDate.UTC(),
		Method:      item.Method,
		Reference:   item.Reference,
		Notes:       item.Notes,
		CreatedBy:   item.CreatedBy,
		CreatedAt:   item.CreatedAt.UTC(),
	}
}

func (m paymentModel) toEntity() entities.Payment {
	return entities.Payment{
		PaymentID:   m.PaymentID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate.UTC(),
		Method:      m.Method,
		Reference:   m.Reference,
		Notes:       m.Notes,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}
