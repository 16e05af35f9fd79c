package repository

import "time"

// Clock supplies the creation time of new shopping lists.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}
