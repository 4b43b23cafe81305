package storage

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/chalskim/adSTTS/models"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FullRepo interface {
	JobStore
	TranscriptCache
	Close() error
}

type JobStore interface {
	StartJob(kind models.JobKind, input string) (*models.Job, error)
	FinishJob(id, output, engine string, jobErr error) (*models.Job, error)
	GetJob(id string) (*models.Job, error)
	ListJobs(limit int) ([]models.Job, error)
}

type ProviderSQL struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (p ProviderSQL) StartJob(kind models.JobKind, input string) (*models.Job, error) {
	job := &models.Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Input:     input,
		Status:    models.StatusRunning,
		CreatedAt: time.Now(),
	}
	query := `
        INSERT INTO jobs (id, kind, input, output, status, error, engine, created_at)
        VALUES (:id, :kind, :input, :output, :status, :error, :engine, :created_at)
        RETURNING *;`
	stmt, err := p.db.PrepareNamed(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var resp models.Job
	err = stmt.Get(&resp, job)
	return &resp, err
}

// FinishJob marks the job done, or failed when jobErr is not nil.
func (p ProviderSQL) FinishJob(id, output, engine string, jobErr error) (*models.Job, error) {
	status := models.StatusDone
	errText := ""
	if jobErr != nil {
		status = models.StatusFailed
		errText = jobErr.Error()
	}
	query := `
        UPDATE jobs SET output = $1, engine = $2, status = $3, error = $4, finished_at = $5
        WHERE id = $6
        RETURNING *;`
	var resp models.Job
	err := p.db.Get(&resp, query, output, engine, status, errText, time.Now(), id)
	return &resp, err
}

func (p ProviderSQL) GetJob(id string) (*models.Job, error) {
	resp := models.Job{}
	err := p.db.Get(&resp, "SELECT * FROM jobs WHERE id=$1;", id)
	return &resp, err
}

// ListJobs returns the newest jobs first; limit <= 0 means all.
func (p ProviderSQL) ListJobs(limit int) ([]models.Job, error) {
	resp := []models.Job{}
	if limit <= 0 {
		err := p.db.Select(&resp, "SELECT * FROM jobs ORDER BY created_at DESC;")
		return resp, err
	}
	err := p.db.Select(&resp, "SELECT * FROM jobs ORDER BY created_at DESC LIMIT $1;", limit)
	return resp, err
}

func (p ProviderSQL) Close() error {
	return p.db.Close()
}

func NewProviderSQL(dbPath string, logger *slog.Logger) FullRepo {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		logger.Error("failed to open db connection", "error", err)
		return nil
	}
	p := ProviderSQL{db: db, logger: logger}
	var version string
	if err := db.Get(&version, "select sqlite_version()"); err != nil {
		logger.Error("failed to query sqlite version", "error", err)
		return nil
	}
	logger.Debug("sqlite opened", "path", dbPath, "version", version)
	if err := p.Migrate(); err != nil {
		logger.Error("failed to migrate", "error", err)
		return nil
	}
	return p
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
