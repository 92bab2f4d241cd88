package model

import "time"

type BackupStatus string

const (
	BackupStatusRunning   BackupStatus = "running"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

type Backup struct {
	ID           int64        `json:"id" db:"id"`
	ObjectKey    string       `json:"object_key" db:"object_key"`
	SizeBytes    int64        `json:"size_bytes" db:"size_bytes"`
	Encrypted    bool         `json:"encrypted" db:"encrypted"`
	Status       BackupStatus `json:"status" db:"status"`
	ErrorMessage string       `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
}
