// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	err        error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: m.sampleRate, NumChannels: m.channels}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func TestFormat_Sniff(t *testing.T) {
	t.Parallel()

	if !(Format{}).Sniff([]byte("FORM\x00\x00\x00\x10AIFFCOMM")) {
		t.Error("Sniff(AIFF) = false, want true")
	}
	if !(Format{}).Sniff([]byte("FORM\x00\x00\x00\x10AIFCFVER")) {
		t.Error("Sniff(AIFC) = false, want true")
	}
	if (Format{}).Sniff([]byte("RIFF\x00\x00\x00\x10WAVEfmt ")) {
		t.Error("Sniff(WAVE) = true, want false")
	}
}

func TestOpen_InvalidData(t *testing.T) {
	t.Parallel()

	_, err := Format{}.Open(bytes.NewReader([]byte("This is not AIFF data")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Open() error = %v, want ErrNotAiffFile", err)
	}
}

func TestDemuxer_PacketsAreMSBAligned(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 44100, channels: 2, samples: []int{16384, -16384, 0, 32767}}
	demux, err := newDemuxer(mock, mock.Format(), 16)
	if err != nil {
		t.Fatalf("newDemuxer() error = %v", err)
	}

	p := demux.Tracks()[0].Params
	if p.Codec != audio.CodecPCM || p.SampleRate != 44100 || p.Channels != 2 {
		t.Errorf("params = %+v", p)
	}
	if p.SampleFormat != (audio.SampleFormat{Encoding: audio.EncodingSigned, Width: 4, Bits: 16}) {
		t.Errorf("SampleFormat = %+v", p.SampleFormat)
	}

	pkt, err := demux.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket() error = %v", err)
	}
	if len(pkt.Data) != 16 {
		t.Fatalf("len(Data) = %d, want 16", len(pkt.Data))
	}

	want := []int32{16384 << 16, -16384 << 16, 0, 32767 << 16}
	for i, w := range want {
		got := int32(binary.LittleEndian.Uint32(pkt.Data[i*4:]))
		if got != w {
			t.Errorf("word %d = %d, want %d", i, got, w)
		}
	}

	if _, err := demux.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("NextPacket() error = %v, want io.EOF", err)
	}
}

func TestDemuxer_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 8000, channels: 2, samples: []int{1, 2, 3}}
	demux, err := newDemuxer(mock, mock.Format(), 8)
	if err != nil {
		t.Fatalf("newDemuxer() error = %v", err)
	}

	pkt, err := demux.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket() error = %v", err)
	}
	if len(pkt.Data) != 8 {
		t.Errorf("len(Data) = %d, want 8 (one stereo frame)", len(pkt.Data))
	}
}

func TestDemuxer_ReadError(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 8000, channels: 1, err: io.ErrClosedPipe}
	demux, err := newDemuxer(mock, mock.Format(), 16)
	if err != nil {
		t.Fatalf("newDemuxer() error = %v", err)
	}

	if _, err := demux.NextPacket(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("NextPacket() error = %v, want io.ErrClosedPipe", err)
	}
}

func TestNewDemuxer_BitDepth(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 8000, channels: 1}
	for _, depth := range []int{0, 33, 64} {
		if _, err := newDemuxer(mock, mock.Format(), depth); !errors.Is(err, ErrUnsupportedBitDepth) {
			t.Errorf("newDemuxer(%d) error = %v, want ErrUnsupportedBitDepth", depth, err)
		}
	}
}
