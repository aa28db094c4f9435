package logger

import (
	"io"
	"log"
	"os"
)

// Logger is an alias used by services for dependency injection.
type Logger = log.Logger

const flags = log.LstdFlags | log.Lmicroseconds | log.LUTC

// New returns a stdout logger tagged with the service name.
func New(service string) *Logger {
	return NewTo(service, os.Stdout)
}

// NewTo is New with an explicit destination. Tests pass io.Discard.
func NewTo(service string, w io.Writer) *Logger {
	return log.New(w, "["+service+"] ", flags)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewTo("discard", io.Discard)
}
