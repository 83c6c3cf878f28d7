// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the container formats and codec decoders known to a pipeline.
// Formats are probed in registration order.
type Registry struct {
	formats []Format
	codecs  map[CodecID]CodecFactory

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[CodecID]CodecFactory),
		mtx:    &sync.RWMutex{},
	}
}

// RegisterFormat adds f, replacing a previously registered format with the same name.
func (r *Registry) RegisterFormat(f Format) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for i, existing := range r.formats {
		if existing.Name() == f.Name() {
			r.formats[i] = f
			return
		}
	}
	r.formats = append(r.formats, f)
}

func (r *Registry) RegisterCodec(id CodecID, factory CodecFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[id] = factory
}

// Formats returns the registered formats in probe order.
func (r *Registry) Formats() []Format {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return slices.Clone(r.formats)
}

// Codecs returns the registered codec ids, sorted.
func (r *Registry) Codecs() []CodecID {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	ids := make([]CodecID, 0, len(r.codecs))
	for id := range r.codecs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FormatByExtension looks up a format by file extension, with or without the leading dot.
func (r *Registry) FormatByExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return nil, false
	}

	r.mtx.RLock()
	defer r.mtx.RUnlock()

	for _, f := range r.formats {
		if slices.Contains(f.Extensions(), ext) {
			return f, true
		}
	}
	return nil, false
}

// NewDecoder constructs the decoder registered for params.Codec.
func (r *Registry) NewDecoder(params TrackParams) (CodecDecoder, error) {
	r.mtx.RLock()
	factory, ok := r.codecs[params.Codec]
	r.mtx.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, params.Codec)
	}

	dec, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedCodec, params.Codec, err)
	}
	return dec, nil
}
