package core

import (
	"context"
	"time"
)

// OperationType represents the type of write statement that produced an event.
type OperationType string

const (
	// OperationInsert represents an INSERT statement.
	OperationInsert OperationType = "INSERT"

	// OperationUpdate represents an UPDATE statement.
	OperationUpdate OperationType = "UPDATE"

	// OperationDelete represents a DELETE statement.
	OperationDelete OperationType = "DELETE"
)

// Field is one column/value pair of a statement payload.
type Field struct {
	Column string `json:"column" yaml:"column" msgpack:"column"`
	Value  any    `json:"value" yaml:"value" msgpack:"value"`
}

// MutationEvent describes a write that has been applied to the database.
type MutationEvent struct {
	Operation    OperationType `json:"operation"`
	Database     string        `json:"database"`
	Table        string        `json:"table"`
	Data         []Field       `json:"data,omitempty"`
	Criteria     []Field       `json:"criteria,omitempty"`
	RowsAffected int64         `json:"rows_affected"`
	InsertID     int64         `json:"insert_id,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Publisher delivers mutation events to downstream consumers.
// Publishing happens after the statement succeeded; a failed publish never
// rolls the statement back.
type Publisher interface {
	Publish(ctx context.Context, event *MutationEvent) error
	Close() error
}
