package session

// Timer counts whole seconds for one attempt. With a positive limit it runs
// as a countdown and reports expiry exactly once; otherwise it is a
// stopwatch. Ticks are delivered by the caller, one per second.
type Timer struct {
	limit     int
	elapsed   int
	remaining int
	expired   bool
	halted    bool
}

func NewTimer(limitSeconds int) *Timer {
	t := &Timer{}
	t.Reset(limitSeconds)
	return t
}

// Reset re-arms the timer for a new quiz.
func (t *Timer) Reset(limitSeconds int) {
	if limitSeconds < 0 {
		limitSeconds = 0
	}
	t.limit = limitSeconds
	t.elapsed = 0
	t.remaining = limitSeconds
	t.expired = false
	t.halted = false
}

// Tick advances one second and returns true only on the tick that reaches
// zero in countdown mode. An expired countdown stops counting.
func (t *Timer) Tick() bool {
	if t.halted || t.expired {
		return false
	}

	t.elapsed++
	if !t.Countdown() || t.remaining == 0 {
		return false
	}

	t.remaining--
	if t.remaining == 0 && !t.expired {
		t.expired = true
		return true
	}
	return false
}

func (t *Timer) Halt() {
	t.halted = true
}

func (t *Timer) Countdown() bool {
	return t.limit > 0
}

func (t *Timer) Elapsed() int {
	return t.elapsed
}

// Remaining is meaningful only in countdown mode.
func (t *Timer) Remaining() int {
	return t.remaining
}

func (t *Timer) Expired() bool {
	return t.expired
}

func (t *Timer) Halted() bool {
	return t.halted
}
