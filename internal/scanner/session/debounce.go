package session

import "time"

// DefaultDebounceWindow suppresses duplicate captures from a continuously
// scanning camera feed.
const DefaultDebounceWindow = 1500 * time.Millisecond

// Debouncer suppresses repeat captures of the same code inside a short
// window. Only accepted captures are recorded, so the window is measured
// from the last dispatch, not from the last time the feed read the label.
type Debouncer struct {
	window   time.Duration
	lastCode string
	lastAt   time.Time
	now      func() time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window, now: time.Now}
}

// NewDebouncerWithClock is NewDebouncer with an injected time source for tests.
func NewDebouncerWithClock(window time.Duration, now func() time.Time) *Debouncer {
	d := NewDebouncer(window)
	d.now = now
	return d
}

// Suppress reports whether a capture of code duplicates the last accepted
// capture within the window. Accepted captures are recorded; suppressed
// ones are not.
func (d *Debouncer) Suppress(code string) bool {
	now := d.now()
	if code == d.lastCode && now.Sub(d.lastAt) <= d.window {
		return true
	}
	d.lastCode = code
	d.lastAt = now
	return false
}

// Reset forgets the last capture so the same code can be re-scanned
// immediately. Called when the user asks to try again.
func (d *Debouncer) Reset() {
	d.lastCode = ""
	d.lastAt = time.Time{}
}
