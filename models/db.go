package models

import (
	"database/sql"
	"time"
)

type JobKind string

const (
	JobRecordAudio  JobKind = "record_audio"
	JobRecordScreen JobKind = "record_screen"
	JobYoutube      JobKind = "youtube"
	JobTranscribe   JobKind = "transcribe"
	JobTTS          JobKind = "tts"
	JobDenoise      JobKind = "denoise"
	JobWorkflow     JobKind = "workflow"
)

type JobStatus string

const (
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// Job is one user-initiated operation.
type Job struct {
	ID         string       `db:"id" json:"id"`
	Kind       JobKind      `db:"kind" json:"kind"`
	Input      string       `db:"input" json:"input"`
	Output     string       `db:"output" json:"output"`
	Status     JobStatus    `db:"status" json:"status"`
	Error      string       `db:"error" json:"error"`
	Engine     string       `db:"engine" json:"engine"` // tts engine or stt backend that did the work
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	FinishedAt sql.NullTime `db:"finished_at" json:"finished_at"`
}

func (j *Job) Duration() time.Duration {
	if !j.FinishedAt.Valid {
		return 0
	}
	return j.FinishedAt.Time.Sub(j.CreatedAt)
}

type Transcript struct {
	Key       string    `db:"cache_key" json:"key"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
