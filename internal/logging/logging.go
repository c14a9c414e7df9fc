package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger with console and daily-file output.
// Level "none" disables logging entirely; an unparseable level falls
// back to info.
func New(level string) zerolog.Logger {
	if level == "none" {
		return zerolog.Nop()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	logPath := getLogPath()
	os.MkdirAll(filepath.Dir(logPath), 0755)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		// Console-only when the state directory is unusable.
		return zerolog.New(console).Level(lvl).With().Timestamp().Logger()
	}

	multi := zerolog.MultiLevelWriter(console, logFile)
	return zerolog.New(multi).Level(lvl).With().Timestamp().Logger()
}

// getLogPath returns platform-specific log file path, one file per day
func getLogPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Logs"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/state"
		}
	}

	name := "recmeet-" + time.Now().Format("2006-01-02") + ".log"
	return filepath.Join(base, "recmeet", name)
}
