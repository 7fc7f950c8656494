package runtime

import (
	"time"

	"github.com/aretw0/ripple/pkg/ports"
)

type systemClock struct{}

// SystemClock returns a Clock backed by time.AfterFunc.
func SystemClock() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
