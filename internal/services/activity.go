package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"versions/relay/internal/constants"
	"versions/relay/internal/metrics"
	gormModels "versions/relay/internal/models/gorm"
)

// ActivityRecorder persists write-path outcomes.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *gormModels.Activity) error
}

// activityLog records a write outcome in the store and in metrics. A
// failure to persist is logged and never fails the write itself.
type activityLog struct {
	recorder ActivityRecorder
	metrics  *metrics.Registry
	logger   *zap.SugaredLogger
}

func (a activityLog) record(ctx context.Context, kind constants.ActivityKind, subject, detail string, opErr error) {
	status := constants.ActivityStatusOK
	errText := ""
	if opErr != nil {
		status = constants.ActivityStatusFailed
		errText = opErr.Error()
	}
	a.metrics.RecordActivity(string(kind), status)

	if a.recorder == nil {
		return
	}

	// The write's own context may already be cancelled.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	entry := &gormModels.Activity{
		Kind:    string(kind),
		Subject: subject,
		Status:  status,
		Detail:  detail,
		Error:   errText,
	}
	if err := a.recorder.Record(recordCtx, entry); err != nil {
		a.logger.Warnw("failed to record activity", "kind", kind, "subject", subject, "error", err)
	}
}
