package models

import "time"

// Event types
const (
	EventTypeFileProcessed = "FILE_PROCESSED"
	EventTypeFileFailed    = "FILE_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// FileProcessedEvent published after each ingested file, committed or
// rolled back.
type FileProcessedEvent struct {
	BaseEvent
	FileName     string `json:"file_name"`
	RowsIngested int    `json:"rows_ingested"`
	RowsSkipped  int    `json:"rows_skipped"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}
