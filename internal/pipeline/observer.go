package pipeline

import (
	"showlink/internal/logger"
	"showlink/internal/models"
)

// Observer receives batch progress. Implementations must be safe for
// concurrent use: records finish on several workers at once.
type Observer interface {
	// OnStart is called once before any record is processed.
	OnStart(total int)
	// OnRecordDone is called after each record's output row is written. err is
	// the reason the record degraded to a less specific target, if any.
	OnRecordDone(out models.OutputRecord, err error)
}

// ProgressObserver feeds a logger.Progress so log lines carry the batch count.
type ProgressObserver struct {
	Progress *logger.Progress
}

func (o ProgressObserver) OnStart(total int) { o.Progress.Start(total) }

func (o ProgressObserver) OnRecordDone(models.OutputRecord, error) { o.Progress.Done() }

type nopObserver struct{}

func (nopObserver) OnStart(int) {}
func (nopObserver) OnRecordDone(models.OutputRecord, error) {}
