// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
)

// framesPerPacket is how many frames are read from the SSND chunk per packet.
const framesPerPacket = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Format is the AIFF / AIFF-C container.
type Format struct{}

func (Format) Name() string         { return "aiff" }
func (Format) Extensions() []string { return []string{"aif", "aiff", "aifc"} }
func (Format) MIMETypes() []string  { return []string{"audio/aiff", "audio/x-aiff"} }

func (Format) Sniff(header []byte) bool {
	if len(header) < 12 || !bytes.Equal(header[0:4], []byte("FORM")) {
		return false
	}
	kind := string(header[8:12])
	return kind == "AIFF" || kind == "AIFC"
}

func (Format) Open(rs io.ReadSeeker) (audio.Demuxer, error) {
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	return newDemuxer(dec, format, int(dec.BitDepth))
}

type demuxer struct {
	dec      aiffReader
	track    audio.Track
	bitDepth int
	channels int
	ints     *goaudio.IntBuffer
	done     bool
}

func newDemuxer(dec aiffReader, format *goaudio.Format, bitDepth int) (*demuxer, error) {
	if bitDepth < 1 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	channels := max(format.NumChannels, 1)
	return &demuxer{
		dec:      dec,
		bitDepth: bitDepth,
		channels: channels,
		ints: &goaudio.IntBuffer{
			Data:           make([]int, framesPerPacket*channels),
			Format:         format,
			SourceBitDepth: bitDepth,
		},
		track: audio.Track{
			ID: 0,
			Params: audio.TrackParams{
				Codec:      audio.CodecPCM,
				SampleRate: format.SampleRate,
				Channels:   format.NumChannels,
				// Samples are re-packed MSB aligned in 32-bit little-endian words.
				SampleFormat: audio.SampleFormat{Encoding: audio.EncodingSigned, Width: 4, Bits: bitDepth},
			},
		},
	}, nil
}

func (d *demuxer) Tracks() []audio.Track { return []audio.Track{d.track} }

func (d *demuxer) NextPacket() (audio.Packet, error) {
	if d.done {
		return audio.Packet{}, io.EOF
	}

	d.ints.Data = d.ints.Data[:cap(d.ints.Data)]
	n, err := d.dec.PCMBuffer(d.ints)
	if err != nil && err != io.EOF {
		return audio.Packet{}, fmt.Errorf("%w", err)
	}
	if err == io.EOF || n < len(d.ints.Data) {
		d.done = true
	}

	n -= n % d.channels
	if n == 0 {
		return audio.Packet{}, io.EOF
	}

	shift := uint(32 - d.bitDepth)
	data := make([]byte, n*4)
	for i, v := range d.ints.Data[:n] {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(int32(v)<<shift))
	}
	return audio.Packet{TrackID: d.track.ID, Data: data}, nil
}

func (d *demuxer) Close() error { return nil }
