package frame

import (
	"sync"
	"time"
)

// Handle identifies one pending request. The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks at the next paint. Each request runs at most
// once; Cancel on a handle that already ran or was cancelled is a no-op.
type Scheduler interface {
	Request(fn func(now time.Time)) Handle
	Cancel(h Handle)
}

type request struct {
	handle Handle
	fn     func(time.Time)
}

// queue keeps pending requests in submission order. Requests drained into
// a running batch stay cancellable until their turn comes.
type queue struct {
	mu       sync.Mutex
	next     Handle
	pending  []request
	inflight map[Handle]bool
}

func (q *queue) push(fn func(time.Time)) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.pending = append(q.pending, request{handle: q.next, fn: fn})
	return q.next
}

func (q *queue) cancel(h Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, r := range q.pending {
		if r.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	if _, ok := q.inflight[h]; ok {
		q.inflight[h] = false
	}
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// run drains the queue and executes the batch in order. Requests made
// while the batch runs land in the next batch.
func (q *queue) run(now time.Time) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.inflight = make(map[Handle]bool, len(batch))
	for _, r := range batch {
		q.inflight[r.handle] = true
	}
	q.mu.Unlock()

	n := 0
	for _, r := range batch {
		q.mu.Lock()
		live := q.inflight[r.handle]
		delete(q.inflight, r.handle)
		q.mu.Unlock()
		if !live {
			continue
		}
		r.fn(now)
		n++
	}
	return n
}

// Ticker paces requests with a time.Ticker. All callbacks run on a single
// goroutine, in submission order.
type Ticker struct {
	q        queue
	interval time.Duration

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// NewTicker starts a ticker running fps paints per second. fps <= 0 falls
// back to 60.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	t := &Ticker{
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Ticker) Interval() time.Duration { return t.interval }

func (t *Ticker) Request(fn func(time.Time)) Handle { return t.q.push(fn) }

// Cancel removes h from the queue. A request already drained for the
// current paint is skipped when its turn comes.
func (t *Ticker) Cancel(h Handle) { t.q.cancel(h) }

// Close stops the paint loop and waits for the running batch to finish.
// Pending requests never run. Close is idempotent.
func (t *Ticker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.closed = true
	close(t.stop)
	t.mu.Unlock()
	<-t.done
}

func (t *Ticker) loop() {
	defer close(t.done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-t.stop:
			return
		case now := <-tk.C:
			t.q.run(now)
		}
	}
}

// Manual runs requests only when Advance is called. Hosts that own their
// own loop (Bubble Tea ticks, a raylib window, offline recording) and tests
// use it.
type Manual struct {
	q     queue
	clock time.Time
	step  time.Duration
}

// NewManual returns a Manual whose clock starts at start and moves by step
// on every Advance.
func NewManual(start time.Time, step time.Duration) *Manual {
	return &Manual{clock: start, step: step}
}

func (m *Manual) Request(fn func(time.Time)) Handle { return m.q.push(fn) }

func (m *Manual) Cancel(h Handle) { m.q.cancel(h) }

// Advance runs every request pending at the time of the call and reports
// how many ran.
func (m *Manual) Advance() int {
	m.clock = m.clock.Add(m.step)
	return m.q.run(m.clock)
}

// AdvanceN calls Advance n times and returns the total run.
func (m *Manual) AdvanceN(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += m.Advance()
	}
	return total
}

func (m *Manual) Pending() int { return m.q.len() }

func (m *Manual) Now() time.Time { return m.clock }
