package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateInvoiceRequest struct {
	ClientID    string  `json:"client_id"`
	TaskID      string  `json:"task_id"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	IssueDate   string  `json:"issue_date"`
	DueDate     string  `json:"due_date"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
}

type UpdateInvoiceRequest struct {
	ClientID    *string  `json:"client_id"`
	TaskID      *string  `json:"task_id"`
	Amount      *float64 `json:"amount"`
	Status      *string  `json:"status"`
	IssueDate   *string  `json:"issue_date"`
	DueDate     *string  `json:"due_date"`
	Description *string  `json:"description"`
	Notes       *string  `json:"notes"`
}

type RecordPaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"payment_method"`
	Reference string  `json:"reference_number"`
	Notes     string  `json:"notes"`
}

type InvoiceDTO struct {
	InvoiceID   string  `json:"id"`
	Number      string  `json:"invoice_number"`
	ClientID    string  `json:"client_id,omitempty"`
	ClientName  string  `json:"client_name,omitempty"`
	TaskID      string  `json:"task_id,omitempty"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	IssueDate   string  `json:"issue_date"`
	DueDate     string  `json:"due_date"`
	PaidDate    *string `json:"paid_date,omitempty"`
	Description string  `json:"description,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type PaymentDTO struct {
	PaymentID   string  `json:"id"`
	InvoiceID   string  `json:"invoice_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Method      string  `json:"payment_method,omitempty"`
	Reference   string  `json:"reference_number,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	CreatedBy   string  `json:"created_by"`
}

type InvoiceResponse struct {
	Invoice InvoiceDTO `json:"invoice"`
}

type InvoiceDetailResponse struct {
	Invoice   InvoiceDTO   `json:"invoice"`
	Payments  []PaymentDTO `json:"payments"`
	TotalPaid float64      `json:"total_paid"`
	Shortfall float64      `json:"shortfall"`
}

type ListInvoicesResponse struct {
	Items []InvoiceDTO `json:"items"`
}

type ListPaymentsResponse struct {
	Items []PaymentDTO `json:"items"`
}

type RecordPaymentResponse struct {
	Payment   PaymentDTO `json:"payment"`
	Invoice   InvoiceDTO `json:"invoice"`
	TotalPaid float64    `json:"total_paid"`
	Shortfall float64    `json:"shortfall"`
}

type InvoiceStatsResponse struct {
	TotalInvoices int     `json:"total_invoices"`
	TotalPaid     float64 `json:"total_paid"`
	TotalPending  float64 `json:"total_pending"`
	TotalOverdue  float64 `json:"total_overdue"`
}
