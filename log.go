package pdfquiz

import (
	"log"
	"sync/atomic"
)

var verboseMode atomic.Bool

// SetVerbose toggles debug output for the generation pipeline
func SetVerbose(verbose bool) {
	verboseMode.Store(verbose)
}

// Verbose reports whether debug output is enabled
func Verbose() bool {
	return verboseMode.Load()
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	if verboseMode.Load() {
		log.Printf(format, v...)
	}
}
