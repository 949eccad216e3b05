package safe

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Go runs fn in a new goroutine and logs a recovered panic.
func Go(fn func()) {
	go func() {
		defer Recover("goroutine")
		fn()
	}()
}

// Recover logs a panic raised in the calling flow. It must be deferred.
func Recover(flow string) {
	if err := recover(); err != nil {
		buf := make([]byte, 2048)
		n := runtime.Stack(buf, false)
		buf = buf[:n]

		zap.S().Errorf("%s panic: %v\n %s", flow, err, buf)
	}
}

// Call runs fn and converts a panic into an error.
func Call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
