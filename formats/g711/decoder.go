// SPDX-License-Identifier: EPL-2.0

// Package g711 decodes A-law and µ-law companded packets (WAV format tags 6 and 7).
package g711

import (
	"errors"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
	"github.com/zaf/g711"
)

var ErrNotG711 = errors.New("track is not A-law or µ-law")

type decoder struct {
	format   *goaudio.Format
	channels int
	expand   func(uint8) int16
}

// NewDecoder is the audio.CodecFactory for audio.CodecALaw and audio.CodecULaw.
func NewDecoder(params audio.TrackParams) (audio.CodecDecoder, error) {
	d := &decoder{channels: max(params.Channels, 1)}
	d.format = &goaudio.Format{NumChannels: d.channels, SampleRate: params.SampleRate}

	switch params.Codec {
	case audio.CodecALaw:
		d.expand = g711.DecodeAlawFrame
	case audio.CodecULaw:
		d.expand = g711.DecodeUlawFrame
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotG711, params.Codec)
	}
	return d, nil
}

func (d *decoder) Decode(p audio.Packet) (*goaudio.Float32Buffer, error) {
	if len(p.Data)%d.channels != 0 {
		return nil, audio.NewRecoverableError(
			fmt.Errorf("%d bytes is not a multiple of %d channels", len(p.Data), d.channels))
	}

	out := &goaudio.Float32Buffer{
		Format:         d.format,
		Data:           make([]float32, len(p.Data)),
		SourceBitDepth: 16,
	}
	for i, b := range p.Data {
		out.Data[i] = float32(d.expand(b)) / 32768.0
	}
	return out, nil
}

func (d *decoder) Close() error { return nil }
