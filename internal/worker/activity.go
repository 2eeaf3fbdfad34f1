// Package worker consumes the dashboard activity feed and keeps a local log
// of it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"daybook/internal/core"
	"daybook/internal/log"
)

// Recorder stores activities.
type Recorder interface {
	RecordActivity(ctx context.Context, a core.Activity) error
}

// Consumer delivers activities from the feed until ctx is done.
type Consumer interface {
	ConsumeActivity(ctx context.Context, handler func(context.Context, core.Activity) error) error
}

type ActivityWorker struct {
	recorder Recorder
	logger   *log.Logger
	onRecord func(core.Activity)

	processed atomic.Int64
	skipped   atomic.Int64
}

// NewActivityWorker records into recorder. onRecord, when not nil, is called
// after each stored activity.
func NewActivityWorker(recorder Recorder, onRecord func(core.Activity), logger *log.Logger) *ActivityWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ActivityWorker{
		recorder: recorder,
		onRecord: onRecord,
		logger:   logger.WithComponent(log.ComponentAMQP),
	}
}

// HandleActivity stores one activity. Activities without an identity are
// skipped; a storage failure is returned so the message is redelivered.
func (w *ActivityWorker) HandleActivity(ctx context.Context, a core.Activity) error {
	if a.Identity.IsZero() {
		w.skipped.Add(1)
		w.logger.WarnContext(ctx, "Skipping activity without identity", "kind", string(a.Kind))
		return nil
	}
	if err := w.recorder.RecordActivity(ctx, a); err != nil {
		return fmt.Errorf("record %s: %w", a.Kind, err)
	}
	w.processed.Add(1)
	w.logger.DebugContext(ctx, "Activity recorded",
		"kind", string(a.Kind),
		log.FieldIdentity, a.Identity.String(),
		log.FieldEntityID, a.EntityID)
	if w.onRecord != nil {
		w.onRecord(a)
	}
	return nil
}

// Run consumes c until ctx is cancelled. Cancellation is not an error.
func (w *ActivityWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "Activity worker started")
	err := c.ConsumeActivity(ctx, w.HandleActivity)
	if errors.Is(err, context.Canceled) {
		w.logger.InfoContext(ctx, "Activity worker stopped",
			"processed", w.processed.Load(),
			"skipped", w.skipped.Load())
		return nil
	}
	return err
}

// Stats returns how many activities were stored and skipped.
func (w *ActivityWorker) Stats() (processed, skipped int64) {
	return w.processed.Load(), w.skipped.Load()
}
