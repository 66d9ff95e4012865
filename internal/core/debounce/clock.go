// Package debounce откладывает распространение частых правок фильтров.
package debounce

import "time"

// Timer - отменяемое отложенное действие
type Timer interface {
	Stop() bool
}

// Clock абстрагирует время, чтобы тайминги можно было проверять детерминированно.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock - реальное время
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
