package logger

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Progress counts completed records and stamps the count on every log line.
// Safe for concurrent use.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

// Start resets the counter for a batch of total records.
func (p *Progress) Start(total int) {
	p.done.Store(0)
	p.total.Store(int64(total))
}

// Done marks one record completed.
func (p *Progress) Done() {
	p.done.Add(1)
}

// Counts returns completed and total.
func (p *Progress) Counts() (done, total int) {
	return int(p.done.Load()), int(p.total.Load())
}

func (p *Progress) String() string {
	done, total := p.Counts()
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	return fmt.Sprintf("%d/%d %d%%", done, total, pct)
}

// Run implements zerolog.Hook.
func (p *Progress) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if p.total.Load() == 0 {
		return
	}
	e.Str("progress", p.String())
}
