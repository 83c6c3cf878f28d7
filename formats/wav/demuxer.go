// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audingest/audio"
)

const (
	formatPCM        = 0x0001
	formatIEEEFloat  = 0x0003
	formatALaw       = 0x0006
	formatMULaw      = 0x0007
	formatExtensible = 0xFFFE

	// framesPerPacket is how many frames of the data chunk go into one packet.
	framesPerPacket = 4096
	maxFmtChunkSize = 1 << 16
	maxChannels     = 255
	// unknownDataSize is written by streaming encoders that never patch the header.
	unknownDataSize = 0xFFFFFFFF
)

// Format is the RIFF/WAVE container.
type Format struct{}

func (Format) Name() string         { return "wav" }
func (Format) Extensions() []string { return []string{"wav", "wave"} }
func (Format) MIMETypes() []string {
	return []string{"audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave"}
}

func (Format) Sniff(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

// Open walks the RIFF chunks up to the data chunk. Chunks other than "fmt "
// and "data" are skipped.
func (f Format) Open(rs io.ReadSeeker) (audio.Demuxer, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(rs, header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if !f.Sniff(header) {
		return nil, ErrNotWavFile
	}

	var info *fmtInfo
	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(rs, chunk); err != nil {
			if info == nil {
				return nil, ErrMissingFmtChunk
			}
			return nil, ErrMissingDataChunk
		}
		id := string(chunk[:4])
		size := binary.LittleEndian.Uint32(chunk[4:])

		switch id {
		case "fmt ":
			if size < 16 || size > maxFmtChunkSize {
				return nil, fmt.Errorf("%w: size %d", ErrInvalidFmtChunk, size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(rs, body); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidFmtChunk, err)
			}
			if size&1 == 1 {
				if _, err := rs.Seek(1, io.SeekCurrent); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidFmtChunk, err)
				}
			}
			parsed, err := parseFmt(body)
			if err != nil {
				return nil, err
			}
			info = parsed

		case "data":
			if info == nil {
				return nil, ErrMissingFmtChunk
			}
			return newDemuxer(rs, info, size), nil

		default:
			if _, err := rs.Seek(int64(size)+int64(size&1), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("%w: skipping %q: %w", ErrUnsupportedWavChunks, id, err)
			}
		}
	}
}

type fmtInfo struct {
	tag        uint16
	channels   int
	sampleRate int
	blockAlign int
	bits       int
	validBits  int
}

func parseFmt(body []byte) (*fmtInfo, error) {
	info := &fmtInfo{
		tag:        binary.LittleEndian.Uint16(body[0:2]),
		channels:   int(binary.LittleEndian.Uint16(body[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
		blockAlign: int(binary.LittleEndian.Uint16(body[12:14])),
		bits:       int(binary.LittleEndian.Uint16(body[14:16])),
	}

	if info.tag == formatExtensible {
		// cbSize(2) validBits(2) channelMask(4) subFormat GUID(16)
		if len(body) < 40 {
			return nil, fmt.Errorf("%w: extensible chunk of %d bytes", ErrInvalidFmtChunk, len(body))
		}
		info.validBits = int(binary.LittleEndian.Uint16(body[18:20]))
		info.tag = binary.LittleEndian.Uint16(body[24:26])
	}

	if info.channels == 0 || info.channels > maxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFmtChunk, info.channels)
	}
	if info.blockAlign != 0 && info.blockAlign < info.channels*((info.bits+7)/8) {
		return nil, fmt.Errorf("%w: block align %d too small for %d channels of %d bits",
			ErrInvalidFmtChunk, info.blockAlign, info.channels, info.bits)
	}

	return info, nil
}

func (i *fmtInfo) params() audio.TrackParams {
	p := audio.TrackParams{
		SampleRate: i.sampleRate,
		Channels:   i.channels,
	}

	width := (i.bits + 7) / 8
	switch i.tag {
	case formatPCM:
		bits := i.bits
		if i.validBits > 0 && i.validBits < bits {
			bits = i.validBits
		}
		p.Codec = audio.CodecPCM
		p.SampleFormat = audio.SampleFormat{Encoding: audio.EncodingSigned, Width: width, Bits: bits}
		if i.bits == 8 {
			p.SampleFormat.Encoding = audio.EncodingUnsigned
		}
	case formatIEEEFloat:
		p.Codec = audio.CodecPCM
		p.SampleFormat = audio.SampleFormat{Encoding: audio.EncodingFloat, Width: width, Bits: i.bits}
	case formatALaw:
		p.Codec = audio.CodecALaw
	case formatMULaw:
		p.Codec = audio.CodecULaw
	default:
		p.Codec = audio.CodecID(fmt.Sprintf("wav:0x%04x", i.tag))
	}
	return p
}

func (i *fmtInfo) frameBytes() int {
	if i.blockAlign > 0 {
		return i.blockAlign
	}
	return max(i.channels, 1) * max((i.bits+7)/8, 1)
}

type demuxer struct {
	r          io.Reader
	track      audio.Track
	frameBytes int
	// remaining bytes of the data chunk, or -1 when the size is unknown
	remaining int64
	buf       []byte
	done      bool
	truncated bool
}

func newDemuxer(r io.Reader, info *fmtInfo, dataSize uint32) *demuxer {
	d := &demuxer{
		r:          r,
		frameBytes: info.frameBytes(),
		remaining:  int64(dataSize),
	}
	d.buf = make([]byte, framesPerPacket*d.frameBytes)
	d.track = audio.Track{ID: 0, Params: info.params()}

	if dataSize == unknownDataSize {
		d.remaining = -1
	} else {
		d.track.Params.Frames = int64(dataSize) / int64(d.frameBytes)
	}
	return d
}

func (d *demuxer) Tracks() []audio.Track { return []audio.Track{d.track} }

func (d *demuxer) NextPacket() (audio.Packet, error) {
	if d.truncated {
		return audio.Packet{}, io.ErrUnexpectedEOF
	}
	if d.done || d.remaining == 0 {
		return audio.Packet{}, io.EOF
	}

	want := int64(len(d.buf))
	if d.remaining > 0 {
		want = min(want, d.remaining)
	}

	n, err := io.ReadFull(d.r, d.buf[:want])
	if d.remaining > 0 {
		d.remaining -= int64(n)
	}

	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// The file ended before the declared chunk size.
		if d.remaining > 0 {
			d.truncated = true
		} else {
			d.done = true
		}
	default:
		return audio.Packet{}, fmt.Errorf("%w", err)
	}

	n -= n % d.frameBytes
	if n == 0 {
		if d.truncated {
			return audio.Packet{}, io.ErrUnexpectedEOF
		}
		return audio.Packet{}, io.EOF
	}

	data := make([]byte, n)
	copy(data, d.buf[:n])
	return audio.Packet{TrackID: d.track.ID, Data: data}, nil
}

func (d *demuxer) Close() error { return nil }
