package main

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging sends the standard logger to stderr and, when path is set, to
// a size-rotated log file as well. The returned func closes that file.
func setupLogging(path string) (*log.Logger, func() error) {
	log.SetFlags(log.LstdFlags)
	if path == "" {
		log.SetOutput(os.Stderr)
		return log.Default(), func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return log.Default(), rotator.Close
}
