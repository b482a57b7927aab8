package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
)

var levelRank = map[string]int{
	common.LevelDebug: 0,
	common.LevelInfo:  1,
	common.LevelWarn:  2,
	common.LevelError: 3,
}

// StdLogger implements common.Logger on top of the standard log package
type StdLogger struct {
	logger   *log.Logger
	minLevel int
	json     bool
}

// NewStdLogger creates a logger writing to w.
// level is one of debug, info, warn, error; format is text or json.
func NewStdLogger(w io.Writer, level, format string) *StdLogger {
	return &StdLogger{
		logger:   log.New(w, "", log.LstdFlags),
		minLevel: parseLevel(level),
		json:     strings.EqualFold(format, "json"),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return levelRank[common.LevelDebug]
	case "warn", "warning":
		return levelRank[common.LevelWarn]
	case "error":
		return levelRank[common.LevelError]
	default:
		return levelRank[common.LevelInfo]
	}
}

// Log writes a message if its level is at or above the configured minimum
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	if rank < l.minLevel {
		return
	}

	if l.json {
		entry := make(map[string]interface{}, len(metadata)+2)
		for k, v := range metadata {
			entry[k] = v
		}
		entry["level"] = level
		entry["msg"] = message
		data, err := json.Marshal(entry)
		if err != nil {
			l.logger.Printf("[%s] %s (unencodable metadata: %v)", level, message, err)
			return
		}
		l.logger.Print(string(data))
		return
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	l.logger.Print(b.String())
}

// NewFromConfig creates a logger for the configured destination.
// The returned close function releases a log file and is a no-op otherwise.
func NewFromConfig(cfg config.LoggingConfig) (*StdLogger, func() error, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		return NewStdLogger(os.Stdout, cfg.Level, cfg.Format), func() error { return nil }, nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return NewStdLogger(f, cfg.Level, cfg.Format), f.Close, nil
	default:
		return NewStdLogger(os.Stderr, cfg.Level, cfg.Format), func() error { return nil }, nil
	}
}
