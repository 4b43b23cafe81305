package main

import (
	"context"
	"fmt"

	"github.com/chalskim/adSTTS/models"
)

// jobFunc does the work of one command and reports what it produced and
// which engine or backend did it.
type jobFunc func(ctx context.Context) (output, engine string, err error)

// runJob records fn in the job history and notifies the user of the outcome.
// A history write failure never fails the job itself.
func runJob(ctx context.Context, kind models.JobKind, input string, fn jobFunc) (string, error) {
	var job *models.Job
	if store != nil {
		var err error
		job, err = store.StartJob(kind, input)
		if err != nil {
			logger.Warn("failed to record job start", "kind", kind, "error", err)
		}
	}
	output, engine, err := fn(ctx)
	if job != nil {
		if _, ferr := store.FinishJob(job.ID, output, engine, err); ferr != nil {
			logger.Warn("failed to record job finish", "id", job.ID, "error", ferr)
		}
	}
	if err != nil {
		logger.Error("job failed", "kind", kind, "input", input, "error", err)
		notifyUser(fmt.Sprintf("%s failed", jobTitle(kind)), err.Error())
		return "", err
	}
	logger.Info("job done", "kind", kind, "output", output, "engine", engine)
	notifyUser(fmt.Sprintf("%s finished", jobTitle(kind)), output)
	return output, nil
}

func jobTitle(kind models.JobKind) string {
	switch kind {
	case models.JobRecordAudio:
		return "Audio recording"
	case models.JobRecordScreen:
		return "Screen recording"
	case models.JobYoutube:
		return "YouTube extraction"
	case models.JobTranscribe:
		return "Transcription"
	case models.JobTTS:
		return "Speech synthesis"
	case models.JobDenoise:
		return "Noise reduction"
	case models.JobWorkflow:
		return "Workflow"
	}
	return string(kind)
}
