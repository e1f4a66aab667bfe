package logger

import (
	"io"
	"log"
	"os"
)

var DebugMode bool

func Init() {
	if os.Getenv("DEBUG") == "true" {
		DebugMode = true
	} else {
		// Discard by default so log lines never corrupt the TUI.
		log.SetOutput(io.Discard)
	}
}

// SetOutput redirects the standard logger, typically to a debug file.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debug(format string, v ...interface{}) {
	if DebugMode {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	log.Printf("[INFO] "+format, v...)
}

func Error(format string, v ...interface{}) {
	log.Printf("[ERROR] "+format, v...)
}
