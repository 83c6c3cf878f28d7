// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
)

type decoder struct {
	format   *goaudio.Format
	sf       audio.SampleFormat
	order    binary.ByteOrder
	channels int
	scale    float32

	// ints is reused across packets.
	ints []int
}

// NewDecoder is the audio.CodecFactory for audio.CodecPCM.
func NewDecoder(params audio.TrackParams) (audio.CodecDecoder, error) {
	sf := params.SampleFormat
	if err := validate(sf); err != nil {
		return nil, err
	}

	channels := max(params.Channels, 1)
	d := &decoder{
		format:   &goaudio.Format{NumChannels: channels, SampleRate: params.SampleRate},
		sf:       sf,
		order:    binary.ByteOrder(binary.LittleEndian),
		channels: channels,
	}
	if sf.BigEndian {
		d.order = binary.BigEndian
	}
	if sf.Encoding != audio.EncodingFloat {
		d.scale = 1 / float32(uint64(1)<<(sf.Bits-1))
	}

	return d, nil
}

func validate(sf audio.SampleFormat) error {
	switch sf.Encoding {
	case audio.EncodingFloat:
		if sf.Width != 4 && sf.Width != 8 {
			return fmt.Errorf("%w: %d-byte float", ErrUnsupportedSampleFormat, sf.Width)
		}
	case audio.EncodingSigned, audio.EncodingUnsigned:
		if sf.Width < 1 || sf.Width > 4 {
			return fmt.Errorf("%w: %d-byte integer", ErrUnsupportedSampleFormat, sf.Width)
		}
		if sf.Bits < 1 || sf.Bits > sf.Width*8 {
			return fmt.Errorf("%w: %d bits in %d bytes", ErrUnsupportedSampleFormat, sf.Bits, sf.Width)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedSampleFormat, sf.Encoding)
	}
	return nil
}

func (d *decoder) Decode(p audio.Packet) (*goaudio.Float32Buffer, error) {
	frameBytes := d.sf.Width * d.channels
	if len(p.Data)%frameBytes != 0 {
		return nil, audio.NewRecoverableError(
			fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrPartialFrame, len(p.Data), frameBytes))
	}

	n := len(p.Data) / d.sf.Width
	out := &goaudio.Float32Buffer{
		Format:         d.format,
		Data:           make([]float32, n),
		SourceBitDepth: d.sf.Bits,
	}

	if d.sf.Encoding == audio.EncodingFloat {
		d.decodeFloat(p.Data, out.Data)
		return out, nil
	}

	if cap(d.ints) < n {
		d.ints = make([]int, n)
	}
	d.ints = d.ints[:n]
	d.decodeInts(p.Data, d.ints)

	for i, v := range d.ints {
		out.Data[i] = float32(v) * d.scale
	}
	return out, nil
}

func (d *decoder) decodeFloat(src []byte, dst []float32) {
	switch d.sf.Width {
	case 4:
		for i := range dst {
			dst[i] = math.Float32frombits(d.order.Uint32(src[i*4:]))
		}
	case 8:
		for i := range dst {
			dst[i] = float32(math.Float64frombits(d.order.Uint64(src[i*8:])))
		}
	}
}

// decodeInts sign-extends (or re-centers) each sample to a signed int of sf.Bits.
func (d *decoder) decodeInts(src []byte, dst []int) {
	w := d.sf.Width
	shift := uint(w*8 - d.sf.Bits)

	for i := range dst {
		b := src[i*w : i*w+w]
		var u uint32
		if d.sf.BigEndian {
			for _, x := range b {
				u = u<<8 | uint32(x)
			}
		} else {
			for j := w - 1; j >= 0; j-- {
				u = u<<8 | uint32(b[j])
			}
		}

		if d.sf.Encoding == audio.EncodingUnsigned {
			dst[i] = int(u>>shift) - 1<<(d.sf.Bits-1)
			continue
		}
		// Move the sign bit to bit 31, then arithmetic shift back.
		v := int32(u << (32 - uint(w*8)))
		dst[i] = int(v >> (32 - uint(w*8) + shift))
	}
}

func (d *decoder) Close() error { return nil }
