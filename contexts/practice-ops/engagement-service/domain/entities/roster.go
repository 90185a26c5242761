package entities

import (
	"strings"
	"time"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

type Client struct {
	ClientID      string
	Name          string
	ClientCode    string
	ContactPerson string
	ContactPhone  string
	ContactEmail  string
	PANNumber     string
	GSTNumber     string
	Status        ClientStatus
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ParseClientStatus(raw string) (ClientStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ClientStatusActive):
		return ClientStatusActive, true
	case string(ClientStatusInactive):
		return ClientStatusInactive, true
	default:
		return "", false
	}
}

type Employee struct {
	EmployeeID  string
	UserID      string
	FullName    string
	Email       string
	Phone       string
	Designation string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const DefaultDesignation = "Staff"
