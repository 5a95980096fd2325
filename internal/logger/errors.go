package logger

import (
	"errors"
	"fmt"
	"os"
)

// Configuration errors of Init.
var (
	ErrAppNameIsEmpty     = errors.New("log app name is required")
	ErrServiceNameIsEmpty = errors.New("log service name is required")
)

// ErrorHandler prints events the global logger failed to write to stderr.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintln(os.Stderr, "logger: dropped event:", err)
}
