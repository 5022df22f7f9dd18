// Package logfile reads log files from disk for upload and computes a
// local preview of their contents.
package logfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yildizm/go-logparser"
	"github.com/yildizm/loglens/internal/api"
)

// Supported format names
const (
	FormatAuto   = "auto"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
	FormatText   = "text"
)

// ErrEmpty is returned for files without content
var ErrEmpty = errors.New("log file is empty")

// Preview is a local, best-effort look at a log file before it is uploaded
type Preview struct {
	Lines   int            `json:"lines"`
	Entries int            `json:"entries"`
	Levels  map[string]int `json:"levels"`
	First   time.Time      `json:"first,omitempty"`
	Last    time.Time      `json:"last,omitempty"`
}

// Span is the time covered by timestamped entries
func (p *Preview) Span() time.Duration {
	if p == nil || p.First.IsZero() || p.Last.IsZero() {
		return 0
	}
	return p.Last.Sub(p.First)
}

// LevelNames returns the seen levels sorted by severity, most severe first
func (p *Preview) LevelNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Levels))
	for name := range p.Levels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := levelRank(names[i]), levelRank(names[j])
		if ri != rj {
			return ri > rj
		}
		return names[i] < names[j]
	})
	return names
}

// Load reads path into an upload payload. Directories and empty files are
// rejected before anything is sent.
func Load(path string) (api.LogFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return api.LogFile{}, fmt.Errorf("failed to access log file: %w", err)
	}
	if info.IsDir() {
		return api.LogFile{}, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is provided by the user
	if err != nil {
		return api.LogFile{}, fmt.Errorf("failed to read log file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return api.LogFile{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	return api.LogFile{Name: filepath.Base(path), Data: data}, nil
}

// Inspect parses data with the given format and summarizes it. Lines the
// parser rejects still count towards Lines; a file the parser cannot read
// at all yields a preview with no entries.
func Inspect(data []byte, format string) (*Preview, error) {
	content := strings.TrimRight(string(data), "\n")
	preview := &Preview{Levels: make(map[string]int)}
	if strings.TrimSpace(content) == "" {
		return preview, nil
	}
	preview.Lines = strings.Count(content, "\n") + 1

	p, err := newParser(format)
	if err != nil {
		return nil, err
	}

	entries, err := p.ParseString(content)
	if err != nil {
		return preview, nil
	}

	for i := range entries {
		entry := &entries[i]
		preview.Entries++
		preview.Levels[NormalizeLevel(entry.Level)]++

		ts := entry.Timestamp
		if ts.IsZero() {
			continue
		}
		if preview.First.IsZero() || ts.Before(preview.First) {
			preview.First = ts
		}
		if ts.After(preview.Last) {
			preview.Last = ts
		}
	}

	return preview, nil
}

func newParser(format string) (logparser.Parser, error) {
	switch strings.ToLower(format) {
	case "", FormatAuto:
		return logparser.New(), nil
	case FormatJSON:
		return logparser.NewWithFormat(logparser.FormatJSON), nil
	case FormatLogfmt:
		return logparser.NewWithFormat(logparser.FormatLogfmt), nil
	case FormatText:
		return logparser.NewWithFormat(logparser.FormatText), nil
	default:
		return nil, fmt.Errorf("unknown format %s. Available formats: auto, json, logfmt, text", format)
	}
}

// NormalizeLevel maps parser level spellings onto DEBUG, INFO, WARN, ERROR
// and FATAL. Unknown or missing levels count as INFO.
func NormalizeLevel(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG", "TRACE":
		return "DEBUG"
	case "WARN", "WARNING":
		return "WARN"
	case "ERROR", "ERR":
		return "ERROR"
	case "FATAL", "CRITICAL", "PANIC":
		return "FATAL"
	default:
		return "INFO"
	}
}

func levelRank(level string) int {
	switch level {
	case "FATAL":
		return 4
	case "ERROR":
		return 3
	case "WARN":
		return 2
	case "INFO":
		return 1
	default:
		return 0
	}
}
