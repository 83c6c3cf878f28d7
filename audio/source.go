// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MediaSource is a seekable byte stream plus an optional format hint.
type MediaSource struct {
	rs     io.ReadSeeker
	closer io.Closer
	// Hint is a lower-cased file extension without the dot, or empty.
	Hint string
}

// NewMediaSource wraps r. Readers that cannot seek are read into memory first.
// If r implements io.Closer it is closed by Close.
func NewMediaSource(r io.Reader, hint string) (*MediaSource, error) {
	src := &MediaSource{Hint: normalizeHint(hint)}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	if rs, ok := r.(io.ReadSeeker); ok {
		src.rs = rs
		return src, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	src.rs = bytes.NewReader(data)
	return src, nil
}

// OpenFile opens path on fsys, using its extension as the format hint.
func OpenFile(fsys afero.Fs, path string) (*MediaSource, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrOpen, path)
	}

	return &MediaSource{
		rs:     f,
		closer: f,
		Hint:   normalizeHint(filepath.Ext(path)),
	}, nil
}

func (s *MediaSource) Read(p []byte) (int, error) { return s.rs.Read(p) }

func (s *MediaSource) Seek(offset int64, whence int) (int64, error) {
	return s.rs.Seek(offset, whence)
}

// Rewind seeks back to the first byte.
func (s *MediaSource) Rewind() error {
	_, err := s.rs.Seek(0, io.SeekStart)
	return err
}

func (s *MediaSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func normalizeHint(hint string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(hint), "."))
}
