package monitor

import "time"

// Timer is a cancellable handle to a scheduled callback. Stop reports
// whether the callback was prevented from running.
type Timer interface {
	Stop() bool
}

// Scheduler is the injected delayed-callback facility backing the
// inactivity countdown. Tests substitute a fake to run the countdown
// under simulated time.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) Schedule(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemScheduler returns a Scheduler backed by time.AfterFunc.
func SystemScheduler() Scheduler {
	return systemScheduler{}
}
