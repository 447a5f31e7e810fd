package task

import (
	"sort"
	"sync"
	"time"
)

// Queue carries continuations back onto the game loop goroutine.
//
// Post may be called from any goroutine (asset loaders, advisory requests).
// Drain, After and Advance are loop-only, so posted work never runs
// concurrently with other game logic.
type Queue struct {
	mu     sync.Mutex // protects posted only
	posted []func()

	now    time.Duration // elapsed loop time
	seq    uint64
	timers []timer
}

type timer struct {
	due time.Duration
	seq uint64 // tiebreak: schedule order
	fn  func()
}

func NewQueue() *Queue {
	return &Queue{
		posted: make([]func(), 0, 32),
		timers: make([]timer, 0, 16),
	}
}

// Post queues fn to run on the next Drain.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.posted = append(q.posted, fn)
	q.mu.Unlock()
}

// Drain runs every continuation posted so far, in post order. Work posted
// while draining waits for the next Drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.posted
	q.posted = make([]func(), 0, cap(batch))
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// After schedules fn once delay of loop time has elapsed.
func (q *Queue) After(delay time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	q.seq++
	q.timers = append(q.timers, timer{due: q.now + delay, seq: q.seq, fn: fn})
}

// Advance moves loop time forward by dt and fires due actions in due order.
func (q *Queue) Advance(dt time.Duration) int {
	q.now += dt
	if len(q.timers) == 0 {
		return 0
	}
	var due, later []timer
	for _, t := range q.timers {
		if t.due <= q.now {
			due = append(due, t)
		} else {
			later = append(later, t)
		}
	}
	if len(due) == 0 {
		return 0
	}
	q.timers = later
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Now is the elapsed loop time seen by Advance.
func (q *Queue) Now() time.Duration { return q.now }

// Pending counts queued continuations plus scheduled actions.
func (q *Queue) Pending() int {
	q.mu.Lock()
	n := len(q.posted)
	q.mu.Unlock()
	return n + len(q.timers)
}
