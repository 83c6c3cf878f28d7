// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audingest/audio"
)

const (
	// go-mp3 always produces 16-bit little-endian stereo.
	channels        = 2
	bytesPerFrame   = channels * 2
	framesPerPacket = 4096
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

// Format is the MPEG audio layer III elementary stream, with or without ID3 tags.
// go-mp3 decodes the frames while demuxing, so packets carry PCM.
type Format struct{}

func (Format) Name() string         { return "mp3" }
func (Format) Extensions() []string { return []string{"mp3"} }
func (Format) MIMETypes() []string  { return []string{"audio/mpeg", "audio/mp3", "audio/x-mpeg"} }

func (Format) Sniff(header []byte) bool {
	if len(header) >= 3 && string(header[:3]) == "ID3" {
		return true
	}
	return isFrameHeader(header)
}

// isFrameHeader checks the 11-bit sync word and rejects reserved field values.
func isFrameHeader(h []byte) bool {
	if len(h) < 4 || h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return false
	}
	version := (h[1] >> 3) & 0x03
	layer := (h[1] >> 1) & 0x03
	bitrate := h[2] >> 4
	rate := (h[2] >> 2) & 0x03
	return version != 1 && layer == 1 && bitrate != 0x0F && rate != 0x03
}

func (Format) Open(rs io.ReadSeeker) (audio.Demuxer, error) {
	return open(rs, func(r io.Reader) (mp3Reader, error) { return gomp3.NewDecoder(r) })
}

// open recovers from go-mp3 panicking on damaged frames while it scans the stream.
func open(rs io.ReadSeeker, newDecoder func(io.Reader) (mp3Reader, error)) (demux audio.Demuxer, err error) {
	defer func() {
		if r := recover(); r != nil {
			demux = nil
			err = fmt.Errorf("%w: %w: %v", ErrNotMP3, ErrCorruptStream, r)
		}
	}()

	dec, err := newDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3, err)
	}
	return newDemuxer(dec)
}

type demuxer struct {
	dec   mp3Reader
	track audio.Track
	buf   []byte
	done  bool
}

func newDemuxer(dec mp3Reader) (*demuxer, error) {
	params := audio.TrackParams{
		Codec:        audio.CodecPCM,
		SampleRate:   dec.SampleRate(),
		Channels:     channels,
		SampleFormat: audio.SampleFormat{Encoding: audio.EncodingSigned, Width: 2, Bits: 16},
	}
	if n := dec.Length(); n > 0 {
		params.Frames = n / bytesPerFrame
	}

	return &demuxer{
		dec:   dec,
		track: audio.Track{ID: 0, Params: params},
		buf:   make([]byte, framesPerPacket*bytesPerFrame),
	}, nil
}

func (d *demuxer) Tracks() []audio.Track { return []audio.Track{d.track} }

// NextPacket reports a go-mp3 panic as a truncated stream: the decoder state
// is lost, but the audio returned so far is valid.
func (d *demuxer) NextPacket() (pkt audio.Packet, err error) {
	if d.done {
		return audio.Packet{}, io.EOF
	}

	defer func() {
		if r := recover(); r != nil {
			d.done = true
			pkt = audio.Packet{}
			err = fmt.Errorf("%w: %w: %v", io.ErrUnexpectedEOF, ErrCorruptStream, r)
		}
	}()

	n, err := io.ReadFull(d.dec, d.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.done = true
	default:
		return audio.Packet{}, fmt.Errorf("%w", err)
	}

	n -= n % bytesPerFrame
	if n == 0 {
		return audio.Packet{}, io.EOF
	}

	data := make([]byte, n)
	copy(data, d.buf[:n])
	return audio.Packet{TrackID: d.track.ID, Data: data}, nil
}

func (d *demuxer) Close() error { return nil }
