package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type Logger struct {
	level string
	out   *log.Logger
}

func New(level string) *Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput builds a logger writing to w instead of stderr.
func NewWithOutput(level string, w io.Writer) *Logger {
	return &Logger{
		level: strings.ToLower(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

// Level returns the configured level name.
func (l *Logger) Level() string {
	return l.level
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level == "debug" {
		l.out.Printf("[DEBUG] "+msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level == "debug" || l.level == "info" {
		l.out.Printf("[INFO] "+msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.level != "error" {
		l.out.Printf("[WARN] "+msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.out.Printf("[ERROR] "+msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.out.Printf("[FATAL] "+msg, args...)
	os.Exit(1)
}
