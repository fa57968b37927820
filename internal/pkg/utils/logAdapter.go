package utils

import (
	"bufio"
	"io"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/rs/zerolog"
)

// ProcessLogWriter adapts a child process output stream to zerolog,
// one event per line
type ProcessLogWriter struct {
	tool  string
	level zerolog.Level
}

// NewProcessLogWriter creates the adapter for a named external tool
func NewProcessLogWriter(tool string, level zerolog.Level) *ProcessLogWriter {
	return &ProcessLogWriter{tool: tool, level: level}
}

// LogLines reads r until EOF, logging each line, and passes every line to cb if set
func (w *ProcessLogWriter) LogLines(r io.Reader, cb func(line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(scanProgressLines)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		goapp.Log.WithLevel(w.level).Str("tool", w.tool).Msg(goapp.Sanitize(line))
		if cb != nil {
			cb(line)
		}
	}
	return sc.Err()
}

// scanProgressLines splits on \n and \r - ffmpeg and similar tools
// rewrite their progress line using carriage returns
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, dropTrailingCR(data[:i]), nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), dropTrailingCR(data), nil
	}
	return 0, nil, nil
}

func dropTrailingCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}
	return data
}
