package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studiodrop/internal/config"
)

// LogFilePattern matches the per-day log files written by NewFromConfig.
const LogFilePattern = "studiodrop-*.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives formatted records. Nil means os.Stderr.
	Writer io.Writer
	// Development adds source locations to every record.
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	handler, err := newHandler(opts)
	if err != nil {
		return nil, err
	}
	return slog.New(newContextHandler(handler)), nil
}

func newHandler(opts Options) (slog.Handler, error) {
	level := ParseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	addSource := opts.Development || level <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		return newJSONHandler(writer, levelVar, addSource), nil
	case "console", "":
		return newPrettyHandler(writer, levelVar, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// FileSink is an open log file; Close releases it.
type FileSink struct {
	Path string
	file *os.File
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// NewFromConfig creates the CLI logger. Records at the configured level go to
// a dated file under the log directory; the terminal only receives warnings
// and errors unless verbose is set.
func NewFromConfig(cfg *config.Config, verbose bool) (*slog.Logger, *FileSink, error) {
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console"})
		return logger, nil, err
	}

	terminalLevel := "warn"
	if verbose {
		terminalLevel = cfg.Logging.Level
	}
	terminal, err := newHandler(Options{Level: terminalLevel, Format: "console", Writer: os.Stderr})
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return slog.New(newContextHandler(terminal)), nil, nil
	}

	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure log directory: %w", err)
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "studiodrop-"+time.Now().Format("20060102")+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}
	fileHandler, err := newHandler(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writer: file})
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	handler := TeeHandler(terminal, fileHandler)
	return slog.New(newContextHandler(handler)), &FileSink{Path: logPath, file: file}, nil
}

// ParseLevel maps a config level name to a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
