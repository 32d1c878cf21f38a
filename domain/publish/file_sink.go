package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultDir    = "outputs"
	DefaultPrefix = "box"
)

// FileSink writes each slot to <dir>/<prefix><slot>.txt, replacing the whole
// file every time so readers never see stale text from a longer value.
type FileSink struct {
	dir    string
	prefix string
	ready  bool
}

func NewFileSink(dir, prefix string) *FileSink {
	if dir == "" {
		dir = DefaultDir
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &FileSink{dir: dir, prefix: prefix}
}

// Path returns the file backing slot.
func (s *FileSink) Path(slot int) string {
	return filepath.Join(s.dir, s.prefix+strconv.Itoa(slot)+".txt")
}

func (s *FileSink) Publish(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.ready {
		if err := s.mkdir(); err != nil {
			return err
		}
	}
	path := s.Path(rec.Slot)
	data := []byte(rec.Text + "\n")
	err := os.WriteFile(path, data, 0o644)
	if errors.Is(err, fs.ErrNotExist) {
		// The directory was removed while the session ran.
		if err := s.mkdir(); err != nil {
			return err
		}
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write slot %d to %s: %w", rec.Slot, path, err)
	}
	return nil
}

func (s *FileSink) mkdir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.ready = false
		return fmt.Errorf("create output dir %s: %w", s.dir, err)
	}
	s.ready = true
	return nil
}
