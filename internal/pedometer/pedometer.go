package pedometer

import (
	"log"
	"time"
)

// DateLayout is the calendar-day key used for daily accumulation.
const DateLayout = "2006-01-02"

const (
	// A reading this far below the last persisted counter value is a
	// candidate for a device reboot rather than sensor jitter.
	rebootDropThreshold = 100
	// Jitter shows up immediately; a reboot implies the counter was
	// silent for at least this long.
	rebootMinGap = 5 * time.Minute
)

// State is the persisted reconciliation snapshot for one device.
// DailyAccumulated never decreases within a single Date.
type State struct {
	Baseline         int64     `json:"baseline"`
	DailyAccumulated int64     `json:"daily_accumulated"`
	Date             string    `json:"date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store persists State between process restarts. A missing snapshot is
// reported as found=false with no error.
type Store interface {
	LoadState() (State, bool, error)
	SaveState(State) error
}

// ResetFunc is invoked when a counter reset (device reboot) is detected,
// carrying the baseline value that was discarded.
type ResetFunc func(lostBaseline int64)

// Reconciler converts a cumulative hardware step counter into a bounded
// steps-today total. It survives process restarts through Store and keeps
// operating from memory if the store starts failing.
type Reconciler struct {
	store   Store
	now     func() time.Time
	onReset ResetFunc

	state       State
	primed      bool
	storeFailed bool
}

type Option func(*Reconciler)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithResetFunc registers a callback for detected counter resets.
func WithResetFunc(fn ResetFunc) Option {
	return func(r *Reconciler) { r.onReset = fn }
}

// New loads any persisted snapshot and resumes from it when it belongs to
// the current day. A failing store degrades to memory-only operation.
func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	state, found, err := store.LoadState()
	if err != nil {
		log.Printf("pedometer: state load failed, starting from memory: %v", err)
		r.storeFailed = true
		return r
	}
	if found && state.Date == r.today() {
		r.state = state
		r.primed = true
	}
	return r
}

// Process reconciles one raw counter reading and returns the running
// steps-today total.
func (r *Reconciler) Process(raw int64) int64 {
	now := r.now()
	today := now.Format(DateLayout)

	if r.state.Date != today {
		// Day rollover: the accumulated total belongs to yesterday.
		r.state = State{Date: today}
		r.primed = false
	}

	if !r.primed {
		r.seed(raw, now)
		return r.state.DailyAccumulated
	}

	if raw < r.state.Baseline {
		if r.isReboot(raw, now) {
			lost := r.state.Baseline
			r.seed(raw, now)
			if r.onReset != nil {
				r.onReset(lost)
			}
			return r.state.DailyAccumulated
		}
		// Jitter below baseline: clamp to zero, resume counting from
		// the new reading.
		r.seed(raw, now)
		return r.state.DailyAccumulated
	}

	delta := raw - r.state.Baseline
	if delta == 0 {
		return r.state.DailyAccumulated
	}

	r.state.DailyAccumulated += delta
	r.state.Baseline = raw
	r.state.UpdatedAt = now
	r.persist()
	return r.state.DailyAccumulated
}

// Today returns the current steps-today total without consuming a reading.
func (r *Reconciler) Today() int64 {
	if r.state.Date != r.now().Format(DateLayout) {
		return 0
	}
	return r.state.DailyAccumulated
}

// State returns a copy of the in-memory snapshot.
func (r *Reconciler) State() State {
	return r.state
}

func (r *Reconciler) seed(raw int64, now time.Time) {
	r.state.Baseline = raw
	r.state.UpdatedAt = now
	r.primed = true
	r.persist()
}

func (r *Reconciler) isReboot(raw int64, now time.Time) bool {
	return r.state.Baseline-raw > rebootDropThreshold &&
		now.Sub(r.state.UpdatedAt) > rebootMinGap
}

func (r *Reconciler) persist() {
	if r.storeFailed {
		return
	}
	if err := r.store.SaveState(r.state); err != nil {
		log.Printf("pedometer: state save failed, continuing in memory: %v", err)
		r.storeFailed = true
	}
}

func (r *Reconciler) today() string {
	return r.now().Format(DateLayout)
}
