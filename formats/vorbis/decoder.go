// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
	"github.com/jfreymuth/vorbis"
)

// packetDecoder is an interface for vorbis.Decoder to allow testing
type packetDecoder interface {
	ReadHeader(header []byte) error
	HeadersRead() bool
	SampleRate() int
	Channels() int
	Decode(in []byte) ([]float32, error)
}

type decoder struct {
	dec    packetDecoder
	format *goaudio.Format
}

// NewDecoder is the audio.CodecFactory for audio.CodecVorbis.
// params.ExtraData must hold the identification, comment and setup headers.
func NewDecoder(params audio.TrackParams) (audio.CodecDecoder, error) {
	return newDecoder(&vorbis.Decoder{}, params)
}

func newDecoder(dec packetDecoder, params audio.TrackParams) (*decoder, error) {
	if len(params.ExtraData) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrMissingHeaders, len(params.ExtraData))
	}

	for i, h := range params.ExtraData[:3] {
		if err := dec.ReadHeader(h); err != nil {
			return nil, fmt.Errorf("%w: header %d: %w", ErrInvalidHeader, i, err)
		}
	}
	if !dec.HeadersRead() {
		return nil, ErrMissingHeaders
	}

	channels := dec.Channels()
	if params.Channels > 0 && params.Channels != channels {
		return nil, fmt.Errorf("%w: container says %d, stream says %d", ErrChannelMismatch, params.Channels, channels)
	}

	return &decoder{
		dec: dec,
		format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  dec.SampleRate(),
		},
	}, nil
}

func (d *decoder) Decode(p audio.Packet) (*goaudio.Float32Buffer, error) {
	samples, err := d.dec.Decode(p.Data)
	if err != nil {
		// A damaged audio packet only loses its own window.
		return nil, audio.NewRecoverableError(fmt.Errorf("vorbis: %w", err))
	}

	// The first audio packet only primes the overlap buffer and yields nothing.
	if len(samples) == 0 {
		return nil, nil
	}

	return &goaudio.Float32Buffer{
		Format:         d.format,
		Data:           samples,
		SourceBitDepth: 32,
	}, nil
}

func (d *decoder) Close() error { return nil }
