package pipeline

import (
	"sync"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

// Emitter delivers progress events over a bounded channel. Stage transitions
// are never lost: when the buffer is full the oldest event is dropped to make
// room. Percent ticks inside a stage are best-effort and dropped when the
// consumer lags.
type Emitter struct {
	ch chan domain.DownloadProgress

	mu     sync.Mutex
	closed bool
}

func NewEmitter(buffer int) *Emitter {
	// A zero-capacity channel would leave the mandatory-send loop nothing
	// to evict; one slot is the floor.
	if buffer < 1 {
		buffer = 1
	}
	return &Emitter{ch: make(chan domain.DownloadProgress, buffer)}
}

// Events returns the receive side of the progress channel.
func (e *Emitter) Events() <-chan domain.DownloadProgress {
	return e.ch
}

// Close closes the progress channel. Safe to call once all senders are done.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}

// send enqueues an event. Droppable events vanish when the buffer is full;
// mandatory events evict the oldest buffered event instead.
func (e *Emitter) send(p domain.DownloadProgress, droppable bool) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if droppable {
		select {
		case e.ch <- p:
		default:
		}
		return
	}

	for {
		select {
		case e.ch <- p:
			return
		default:
		}
		select {
		case <-e.ch:
		default:
		}
	}
}

// Emit delivers a mandatory event, typically a stage transition.
func (e *Emitter) Emit(p domain.DownloadProgress) {
	e.send(p, false)
}

// Tick delivers a best-effort event, typically a percent update.
func (e *Emitter) Tick(p domain.DownloadProgress) {
	e.send(p, true)
}

// tracker enforces the forward-only stage machine for one track and turns
// transitions into progress events.
type tracker struct {
	trackID string
	stage   domain.DownloadStage
	emitter *Emitter
}

func newTracker(trackID string, emitter *Emitter) *tracker {
	return &tracker{
		trackID: trackID,
		stage:   domain.StageQueued,
		emitter: emitter,
	}
}

// advance moves to the next stage and emits the transition. Backward moves
// are ignored, which keeps late goroutines from rewinding the display.
func (t *tracker) advance(stage domain.DownloadStage, fraction float64, message string) {
	if !t.stage.CanAdvance(stage) {
		return
	}
	t.stage = stage
	t.emitter.Emit(domain.DownloadProgress{
		TrackID:  t.trackID,
		Stage:    stage,
		Fraction: fraction,
		Message:  message,
	})
}

// tick emits a sub-stage percent update at the current stage.
func (t *tracker) tick(fraction float64, message string) {
	t.emitter.Tick(domain.DownloadProgress{
		TrackID:  t.trackID,
		Stage:    t.stage,
		Fraction: fraction,
		Message:  message,
	})
}

// fail transitions to the terminal error stage.
func (t *tracker) fail(message string) {
	t.advance(domain.StageError, 0, message)
}
