package migration

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorSink is the append-only record-level error file. Every run stamps
// a header with its run ID so interleaved re-runs stay attributable.
type ErrorSink struct {
	mu    sync.Mutex
	file  *os.File
	runID uuid.UUID
	count int
}

func NewErrorSink(path string) (*ErrorSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log %s: %w", path, err)
	}

	sink := &ErrorSink{file: file, runID: uuid.New()}
	fmt.Fprintf(file, "# run %s started %s\n", sink.runID, time.Now().Format(time.RFC3339))
	return sink, nil
}

func (s *ErrorSink) RunID() uuid.UUID { return s.runID }

// Logf records one record-level failure. The record is also mirrored to
// the structured log; the pipeline continues regardless.
func (s *ErrorSink) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	zap.S().Errorw("record failed", "error", msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	fmt.Fprintf(s.file, "%s %s\n", time.Now().Format(time.RFC3339), msg)
}

func (s *ErrorSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *ErrorSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.file, "# run %s finished with %d errors\n", s.runID, s.count)
	return s.file.Close()
}
