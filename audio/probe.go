// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// probeHeaderSize is how many leading bytes are handed to Sniff and mimetype.
const probeHeaderSize = 3072

// Probe identifies the container of src and opens it.
// The hint only moves a format to the front of the candidate list, it never
// selects a format whose Sniff rejects the content.
func (r *Registry) Probe(src *MediaSource, log *zap.Logger) (Demuxer, Format, error) {
	if log == nil {
		log = zap.NewNop()
	}

	header := make([]byte, probeHeaderSize)
	n, err := io.ReadFull(src, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	header = header[:n]
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: empty input", ErrUnrecognizedFormat)
	}

	candidates := r.candidates(src.Hint, header)
	if len(candidates) == 0 {
		return nil, nil, ErrUnrecognizedFormat
	}

	var errs []error
	for _, f := range candidates {
		if err := src.Rewind(); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrOpen, err)
		}

		demux, err := f.Open(src)
		if err != nil {
			log.Debug("format candidate rejected",
				zap.String("format", f.Name()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
			continue
		}

		log.Debug("container probed",
			zap.String("format", f.Name()),
			zap.String("hint", src.Hint),
			zap.Int("tracks", len(demux.Tracks())),
		)
		return demux, f, nil
	}

	return nil, nil, fmt.Errorf("%w: %w", ErrUnrecognizedFormat, errors.Join(errs...))
}

// candidates orders the formats that accept header: hint, MIME match, then sniffers.
func (r *Registry) candidates(hint string, header []byte) []Format {
	formats := r.Formats()
	var out []Format
	add := func(f Format) {
		if !slices.ContainsFunc(out, func(o Format) bool { return o.Name() == f.Name() }) {
			out = append(out, f)
		}
	}

	if f, ok := r.FormatByExtension(hint); ok && f.Sniff(header) {
		add(f)
	}

	for m := mimetype.Detect(header); m != nil; m = m.Parent() {
		for _, f := range formats {
			if slices.ContainsFunc(f.MIMETypes(), m.Is) {
				add(f)
			}
		}
	}

	for _, f := range formats {
		if f.Sniff(header) {
			add(f)
		}
	}
	return out
}
