// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
	"github.com/mewkiz/flac/frame"
)

type decoder struct {
	format   *goaudio.Format
	channels int
	bits     int
}

// NewDecoder is the audio.CodecFactory for audio.CodecFLAC. Each packet is
// one complete frame, header included, as produced by this package's
// demuxer and by FLAC-in-Ogg.
func NewDecoder(params audio.TrackParams) (audio.CodecDecoder, error) {
	bits := params.SampleFormat.Bits
	if bits < 4 || bits > 32 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrInvalidStreamInfo, bits)
	}
	if params.Channels < 1 || params.Channels > 8 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidStreamInfo, params.Channels)
	}

	return &decoder{
		format:   &goaudio.Format{NumChannels: params.Channels, SampleRate: params.SampleRate},
		channels: params.Channels,
		bits:     bits,
	}, nil
}

// Decode parses one frame. Any parse failure, checksum mismatch included,
// is recoverable: the caller drops the frame and moves on.
func (d *decoder) Decode(p audio.Packet) (buf *goaudio.Float32Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, audio.NewRecoverableError(fmt.Errorf("%w: %v", ErrInvalidFrame, r))
		}
	}()

	f, err := frame.New(bytes.NewReader(p.Data))
	if err != nil {
		return nil, audio.NewRecoverableError(fmt.Errorf("%w: %w", ErrInvalidFrame, err))
	}
	if f.BitsPerSample == 0 {
		f.BitsPerSample = uint8(d.bits)
	}
	if err := f.Parse(); err != nil {
		return nil, audio.NewRecoverableError(fmt.Errorf("%w: %w", ErrInvalidFrame, err))
	}

	if len(f.Subframes) != d.channels {
		return nil, audio.NewRecoverableError(fmt.Errorf("%w: frame has %d subframes, stream has %d channels",
			ErrInvalidFrame, len(f.Subframes), d.channels))
	}

	blockSize := int(f.BlockSize)
	bits := int(f.BitsPerSample)
	scale := 1 / float32(uint64(1)<<(bits-1))
	out := &goaudio.Float32Buffer{
		Format:         d.format,
		Data:           make([]float32, blockSize*d.channels),
		SourceBitDepth: bits,
	}
	for ch, sub := range f.Subframes {
		if len(sub.Samples) < blockSize {
			return nil, audio.NewRecoverableError(fmt.Errorf("%w: subframe %d has %d samples, want %d",
				ErrInvalidFrame, ch, len(sub.Samples), blockSize))
		}
		for i, v := range sub.Samples[:blockSize] {
			out.Data[i*d.channels+ch] = float32(v) * scale
		}
	}
	return out, nil
}

func (d *decoder) Close() error { return nil }
