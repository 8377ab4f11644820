package main

import "time"

// FPSLimiter paces frames to a fixed rate.
type FPSLimiter struct {
	limit int
	next  time.Time
}

func NewFPSLimiter(limit int) *FPSLimiter {
	return &FPSLimiter{limit: limit}
}

// Wait blocks until the next frame is due. A limit of 0 never blocks.
// Sleeps most of the interval and spins the last stretch for precision.
func (f *FPSLimiter) Wait() {
	if f.limit <= 0 {
		return
	}
	target := time.Second / time.Duration(f.limit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// Resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
