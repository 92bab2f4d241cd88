package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type BackupStore struct {
	db *sqlx.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: wrap(db)}
}

const backupCols = `id, object_key, size_bytes, encrypted, status, error_message, created_at, completed_at`

func (s *BackupStore) Create(objectKey string, encrypted bool) (*model.Backup, error) {
	result, err := s.db.Exec(
		`INSERT INTO backups (object_key, encrypted, status, created_at) VALUES (?, ?, ?, ?)`,
		objectKey, boolInt(encrypted), model.BackupStatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	var b model.Backup
	err := s.db.Get(&b, `SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return &b, nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	var backups []model.Backup
	err := s.db.Select(&backups, `SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return backups, nil
}

func (s *BackupStore) MarkFailed(id int64, errorMsg string) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		model.BackupStatusFailed, errorMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update backup failed: %w", err)
	}
	return nil
}

func (s *BackupStore) MarkCompleted(id, sizeBytes int64) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, completed_at = ? WHERE id = ?`,
		model.BackupStatusCompleted, sizeBytes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update backup completed: %w", err)
	}
	return nil
}
