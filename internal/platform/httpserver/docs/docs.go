// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Liveness probe",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/v1/me": {
            "get": {
                "tags": [
                    "identity"
                ],
                "summary": "Current actor and capabilities",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/dashboard": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Dashboard counters",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/tasks": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "List tasks",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "name": "client_id",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "name": "search",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Create task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "CreateTaskRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/tasks/{task_id}": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Get task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "patch": {
                "tags": [
                    "tasks"
                ],
                "summary": "Edit task fields",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "UpdateTaskRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "tasks"
                ],
                "summary": "Delete task and its documents",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/tasks/{task_id}/status": {
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Change task status (423 when overdue-locked)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "SetTaskStatusRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/tasks/{task_id}/documents": {
            "get": {
                "tags": [
                    "documents"
                ],
                "summary": "List task documents",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "documents"
                ],
                "summary": "Upload document (multipart field file)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/documents/{document_id}/link": {
            "get": {
                "tags": [
                    "documents"
                ],
                "summary": "Short-lived download link",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "document_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/documents/{document_id}": {
            "delete": {
                "tags": [
                    "documents"
                ],
                "summary": "Delete document",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "document_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/files/{object_path}": {
            "get": {
                "tags": [
                    "documents"
                ],
                "summary": "Download stored file with token or session",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "object_path",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "token",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/clients": {
            "get": {
                "tags": [
                    "clients"
                ],
                "summary": "List clients",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "name": "search",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "clients"
                ],
                "summary": "Create client",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "SaveClientRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/clients/{client_id}": {
            "get": {
                "tags": [
                    "clients"
                ],
                "summary": "Get client",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "client_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "clients"
                ],
                "summary": "Save client",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "client_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "SaveClientRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "clients"
                ],
                "summary": "Delete client",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "client_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/employees": {
            "get": {
                "tags": [
                    "employees"
                ],
                "summary": "List employees",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "active",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "employees"
                ],
                "summary": "Create employee",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "SaveEmployeeRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/employees/{employee_id}": {
            "get": {
                "tags": [
                    "employees"
                ],
                "summary": "Get employee",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "employee_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "employees"
                ],
                "summary": "Save employee",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "employee_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "SaveEmployeeRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "employees"
                ],
                "summary": "Delete employee",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "employee_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/invoices": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "List invoices",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "name": "client_id",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "billing"
                ],
                "summary": "Create invoice",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "CreateInvoiceRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/invoices/stats": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "Invoice totals",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/invoices/{invoice_id}": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "Invoice with payments",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "invoice_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "patch": {
                "tags": [
                    "billing"
                ],
                "summary": "Edit invoice",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "invoice_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "UpdateInvoiceRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "billing"
                ],
                "summary": "Delete invoice",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "invoice_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/invoices/{invoice_id}/payments": {
            "post": {
                "tags": [
                    "billing"
                ],
                "summary": "Record payment",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "invoice_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "RecordPaymentRequest"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/payments": {
            "get": {
                "tags": [
                    "billing"
                ],
                "summary": "List payments",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "invoice_id",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/realtime/stream": {
            "get": {
                "tags": [
                    "realtime"
                ],
                "summary": "Server-sent invalidation stream",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "unauthenticated"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "sub",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "name": "session_id",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "name": "access_token",
                        "in": "query",
                        "required": false
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "practicedesk API",
	Description:      "Role-gated task lifecycle, billing ledger and realtime invalidation stream for an office workflow tool.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
