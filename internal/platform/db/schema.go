package db

var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client_code TEXT NOT NULL DEFAULT '',
		contact_person TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		pan_number TEXT NOT NULL DEFAULT '',
		gst_number TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		user_id TEXT UNIQUE,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL DEFAULT 'Staff',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		assignee_employee_id TEXT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date DATE NOT NULL,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_assignee_idx ON tasks (assignee_employee_id)`,
	`CREATE TABLE IF NOT EXISTS task_documents (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		uploaded_by TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL DEFAULT '',
		object_path TEXT NOT NULL,
		file_url TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS task_documents_task_idx ON task_documents (task_id)`,
	`CREATE INDEX IF NOT EXISTS task_documents_object_path_idx ON task_documents (object_path)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		invoice_number TEXT NOT NULL CONSTRAINT invoices_invoice_number_key UNIQUE,
		client_id TEXT,
		task_id TEXT,
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		status TEXT NOT NULL,
		issue_date DATE NOT NULL,
		due_date DATE NOT NULL,
		paid_date TIMESTAMPTZ,
		description TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		payment_date TIMESTAMPTZ NOT NULL,
		payment_method TEXT NOT NULL DEFAULT '',
		reference_number TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS payments_invoice_idx ON payments (invoice_id)`,
}
