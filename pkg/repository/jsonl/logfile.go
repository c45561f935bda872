package jsonl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/secmon-lab/ganit/pkg/utils/safe"
)

// logFile is a single append-only JSONL file
type logFile struct {
	path string
	mu   sync.RWMutex
}

func newLogFile(path string) *logFile {
	return &logFile{path: path}
}

// append writes v as one complete line with a single write call
func (l *logFile) append(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal record", goerr.V("path", l.path))
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	// #nosec G304 - path is built from the configured directory
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return goerr.Wrap(err, "failed to open log file", goerr.V("path", l.path))
	}
	defer safe.Close(ctx, f)

	if err := lockExclusive(f); err != nil {
		return goerr.Wrap(err, "failed to lock log file", goerr.V("path", l.path))
	}
	defer func() {
		if err := unlock(f); err != nil {
			logging.From(ctx).Error("failed to unlock log file", "error", err, "path", l.path)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return goerr.Wrap(err, "failed to append record", goerr.V("path", l.path))
	}
	return nil
}

// lines returns every complete line in the file. A trailing line without a
// newline is a write in progress from another process and is not returned.
func (l *logFile) lines(ctx context.Context) ([][]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// #nosec G304 - path is built from the configured directory
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.path))
	}
	defer safe.Close(ctx, f)

	if err := lockShared(f); err != nil {
		return nil, goerr.Wrap(err, "failed to lock log file", goerr.V("path", l.path))
	}
	defer func() {
		if err := unlock(f); err != nil {
			logging.From(ctx).Error("failed to unlock log file", "error", err, "path", l.path)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read log file", goerr.V("path", l.path))
	}

	var result [][]byte
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSpace(data[:idx])
		if len(line) > 0 {
			result = append(result, line)
		}
		data = data[idx+1:]
	}
	return result, nil
}

// readAll decodes every complete line of the log into a T.
// Lines that fail to decode are logged and skipped.
func readAll[T any](ctx context.Context, l *logFile) ([]*T, error) {
	lines, err := l.lines(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(lines))
	for i, line := range lines {
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			logging.From(ctx).Warn("skipping malformed log line",
				"path", l.path,
				"line", i+1,
				"error", err,
			)
			continue
		}
		result = append(result, &v)
	}
	return result, nil
}
