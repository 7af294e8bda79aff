/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package log provides the small leveled logging facade used throughout
// bumper, in the same spirit as github.com/ortuman/jackal's own log
// package: a package-level Debugf/Infof/Error/Errorf, backed by the
// standard library's log.Logger rather than a third-party structured
// logger. See DESIGN.md for why this one facade stays on the standard
// library while the rest of the ambient stack does not.
package log

import (
	"fmt"
	stdlog "log"
	"os"
	"sync"
)

// Level controls which severities are emitted.
type Level int32

// Severity levels, lowest to highest.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	mu     sync.RWMutex
	level  = InfoLevel
	logger = stdlog.New(os.Stderr, "", stdlog.LstdFlags|stdlog.Lmicroseconds)
)

// SetLevel sets the minimum severity that will be written out.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput lets bumperd redirect logging (e.g. to a file) at startup.
func SetOutput(w interface {
	Write(p []byte) (int, error)
}) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

func write(l Level, prefix, msg string) {
	mu.RLock()
	cur := level
	mu.RUnlock()
	if l < cur {
		return
	}
	logger.Printf("%s %s", prefix, msg)
}

// Debugf logs a formatted debug-level message.
func Debugf(format string, args ...interface{}) {
	write(DebugLevel, "DEBUG", fmt.Sprintf(format, args...))
}

// Infof logs a formatted info-level message.
func Infof(format string, args ...interface{}) {
	write(InfoLevel, "INFO ", fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warn-level message.
func Warnf(format string, args ...interface{}) {
	write(WarnLevel, "WARN ", fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error-level message.
func Errorf(format string, args ...interface{}) {
	write(ErrorLevel, "ERROR", fmt.Sprintf(format, args...))
}

// Error logs an error value at error level.
func Error(err error) {
	if err == nil {
		return
	}
	write(ErrorLevel, "ERROR", err.Error())
}
