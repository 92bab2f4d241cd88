// Package backup uploads point-in-time database snapshots to S3-compatible
// storage, optionally encrypted with a passphrase.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule takes one snapshot a day at midnight.
const DefaultSchedule = "@daily"

var (
	ErrNotConfigured = errors.New("backup not configured: S3 bucket or credentials missing")
	ErrInProgress    = errors.New("backup already in progress")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	S3 S3Config
	// Passphrase encrypts snapshots when set.
	Passphrase string
	// Schedule is a cron expression. Empty means DefaultSchedule.
	Schedule string
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// Manager takes snapshots on a schedule and on demand.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status
	client s3Client
	cron   *cron.Cron

	run sync.Mutex

	db      *sql.DB
	backups *store.BackupStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewManager(cfg Config, db *sql.DB, backups *store.BackupStore, logger *slog.Logger) *Manager {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	m := &Manager{
		cfg:     cfg,
		db:      db,
		backups: backups,
		logger:  logger.With("component", "backup"),
		now:     time.Now,
		status:  Status{State: StateDisabled},
	}
	if cfg.S3.complete() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether snapshots have somewhere to go.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start schedules snapshots. It is a no-op when storage is not configured.
func (m *Manager) Start(ctx context.Context) error {
	if !m.Enabled() {
		m.logger.Info("backups disabled")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(slog.NewLogLogger(m.logger.Handler(), slog.LevelError)))))
	_, err := c.AddFunc(m.cfg.Schedule, func() {
		if _, err := m.RunNow(ctx); err != nil {
			m.logger.Error("scheduled backup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", m.cfg.Schedule, err)
	}
	c.Start()
	m.cron = c
	m.logger.Info("backup scheduler started", "schedule", m.cfg.Schedule, "bucket", m.cfg.S3.Bucket)
	return nil
}

// Stop halts scheduling and waits for a running snapshot.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if s.LastBackup == nil {
		s.LastBackup = m.status.LastBackup
	}
	m.status = s
	m.mu.Unlock()
}

// RunNow snapshots the database and uploads it. Only one snapshot runs at a time.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}
	if !m.run.TryLock() {
		return nil, ErrInProgress
	}
	defer m.run.Unlock()

	m.setStatus(Status{State: StateRunning, InProgress: true})

	encrypted := passphrase != ""
	key := objectKey(m.now(), encrypted)
	record, err := m.backups.Create(key, encrypted)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	size, err := m.upload(ctx, client, bucket, key, passphrase)
	if err != nil {
		if markErr := m.backups.MarkFailed(record.ID, err.Error()); markErr != nil {
			m.logger.Error("failed to record backup failure", "backup_id", record.ID, "error", markErr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	if err := m.backups.MarkCompleted(record.ID, size); err != nil {
		return nil, err
	}
	done := m.now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &done})
	m.logger.Info("backup uploaded", "backup_id", record.ID, "key", key, "size", humanize.Bytes(uint64(size)))

	return m.backups.GetByID(record.ID)
}

func (m *Manager) upload(ctx context.Context, client s3Client, bucket, key, passphrase string) (int64, error) {
	data, err := m.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if passphrase != "" {
		if data, err = Seal(data, passphrase); err != nil {
			return 0, fmt.Errorf("encrypt snapshot: %w", err)
		}
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return 0, fmt.Errorf("upload to s3: %w", err)
	}
	return int64(len(data)), nil
}

// snapshot writes a consistent copy of the live database with VACUUM INTO and
// returns its bytes.
func (m *Manager) snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "smartkitchen-backup-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func objectKey(at time.Time, encrypted bool) string {
	key := fmt.Sprintf("backups/smartkitchen-%s.db", at.UTC().Format("20060102T150405Z"))
	if encrypted {
		key += ".enc"
	}
	return key
}
