package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// maxFrameBytes bounds a single JSONL line; wide frames carry every key of every
// variable.
const maxFrameBytes = 16 << 20

// Replayer feeds frames from a JSON Lines file, one frame per line. Blank lines
// and lines starting with '#' are skipped. It finishes at end of file.
type Replayer struct {
	path   string
	output chan<- []byte
	logger *zap.Logger
}

// NewReplayer creates a replay source for path.
func NewReplayer(path string, output chan<- []byte, logger *zap.Logger) *Replayer {
	logger.Info("Replay source created", zap.String("path", path))
	return &Replayer{path: path, output: output, logger: logger}
}

// Run streams the file downstream.
func (r *Replayer) Run(ctx context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReplayOpenFailed, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)

	lines := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		frame := make([]byte, len(line))
		copy(frame, line)

		select {
		case r.output <- frame:
			lines++
		case <-ctx.Done():
			r.logger.Debug("Context cancelled while replaying", zap.Int("frames_sent", lines))
			return context.Canceled
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrReplayReadFailed, err)
	}

	r.logger.Info("Replay finished", zap.String("path", r.path), zap.Int("frames_sent", lines))
	return nil
}
