package runner

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Outstandr/lovable-fit-sub000/internal/agent/api"
	"github.com/Outstandr/lovable-fit-sub000/internal/pedometer"
)

// SampleSource yields cumulative step-counter readings. ok=false means the
// source has no sample ready this tick.
type SampleSource interface {
	Next() (raw int64, ok bool)
}

// Reporter pushes daily totals to the backend. Satisfied by *api.Client.
type Reporter interface {
	ReportDaily(ctx context.Context, day string, steps int) (*api.DailyReport, error)
}

// ReaderSource reads one counter value per line, standing in for the
// platform sensor bridge. Blank lines and junk are skipped.
type ReaderSource struct {
	scanner *bufio.Scanner
}

func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{scanner: bufio.NewScanner(r)}
}

func (s *ReaderSource) Next() (int64, bool) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		raw, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			slog.Warn("skipping unparseable counter sample", "line", line)
			continue
		}
		return raw, true
	}
	return 0, false
}

// Runner feeds counter samples through the reconciler and reports the
// resulting daily total on a fixed interval. A failed report is logged and
// retried on the next tick; nothing is buffered.
type Runner struct {
	rec      *pedometer.Reconciler
	source   SampleSource
	reporter Reporter
	interval time.Duration
	now      func() time.Time
}

func New(rec *pedometer.Reconciler, source SampleSource, reporter Reporter, interval time.Duration) *Runner {
	return &Runner{
		rec:      rec,
		source:   source,
		reporter: reporter,
		interval: interval,
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if raw, ok := r.source.Next(); ok {
		r.rec.Process(raw)
	}

	// The day key comes from the clock, never from the reconciler
	// snapshot: right after midnight the snapshot still carries
	// yesterday's date while Today() is already 0, and reporting that
	// pair would overwrite yesterday's stored total.
	day := r.now().Format(pedometer.DateLayout)
	total := r.rec.Today()
	if _, err := r.reporter.ReportDaily(ctx, day, int(total)); err != nil {
		slog.Warn("daily report failed, retrying next tick", "day", day, "steps", total, "error", err)
	}
}
