// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audingest/audio"
	"github.com/ik5/audingest/internal/audiotest"
)

const (
	testBlock  = 4096
	testFrames = 10
	testRate   = 44100
)

// testSample is the 16-bit value of channel ch at frame position pos.
func testSample(ch, pos int) int32 {
	freq, amp := 440.0, 8000.0
	if ch == 1 {
		freq, amp = 1000.0, 4000.0
	}
	return int32(amp * math.Sin(2*math.Pi*freq*float64(pos)/testRate))
}

// encodeStream returns a stereo 16-bit stream of testFrames frames and the
// offset of every frame.
func encodeStream(t *testing.T) ([]byte, []int) {
	t.Helper()

	data, offsets, err := audiotest.EncodeFLAC(testRate, 2, testBlock, testFrames, testSample)
	if err != nil {
		t.Fatalf("EncodeFLAC() error = %v", err)
	}
	return data, offsets
}

func readPackets(t *testing.T, demux audio.Demuxer) []audio.Packet {
	t.Helper()

	var pkts []audio.Packet
	for {
		pkt, err := demux.NextPacket()
		if errors.Is(err, io.EOF) {
			return pkts
		}
		if err != nil {
			t.Fatalf("NextPacket() error = %v", err)
		}
		pkts = append(pkts, pkt)
	}
}

func TestFormat_Sniff(t *testing.T) {
	t.Parallel()

	if !(Format{}).Sniff([]byte("fLaC\x00\x00\x00\x22")) {
		t.Error("Sniff(fLaC) = false, want true")
	}
	if (Format{}).Sniff([]byte("OggS\x00\x02")) {
		t.Error("Sniff(OggS) = true, want false")
	}
}

func TestOpen_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Format{}.Open(bytes.NewReader([]byte("This is not FLAC data")))
	if !errors.Is(err, ErrNotFLAC) {
		t.Errorf("Open() error = %v, want ErrNotFLAC", err)
	}
}

func TestOpen_SplitsFrames(t *testing.T) {
	t.Parallel()

	data, offsets := encodeStream(t)
	demux, err := Format{}.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	p := demux.Tracks()[0].Params
	if p.Codec != audio.CodecFLAC || p.SampleRate != testRate || p.Channels != 2 ||
		p.SampleFormat.Bits != 16 || p.Frames != testFrames*testBlock {
		t.Errorf("params = %+v", p)
	}

	pkts := readPackets(t, demux)
	if len(pkts) != testFrames {
		t.Fatalf("got %d packets, want %d", len(pkts), testFrames)
	}
	for i, pkt := range pkts {
		end := len(data)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if !bytes.Equal(pkt.Data, data[offsets[i]:end]) {
			t.Errorf("packet %d does not span frame bytes [%d:%d]", i, offsets[i], end)
		}
	}
}

func TestDemuxer_SkipsLeadingGarbage(t *testing.T) {
	t.Parallel()

	data, offsets := encodeStream(t)
	frames := append([]byte{0xFF, 0xF8, 0x00, 0x13, 0x37}, data[offsets[0]:]...)
	demux, err := newDemuxer(frames, testRate, 2, 16, 0)
	if err != nil {
		t.Fatalf("newDemuxer() error = %v", err)
	}

	pkts := readPackets(t, demux)
	if len(pkts) != testFrames {
		t.Fatalf("got %d packets, want %d", len(pkts), testFrames)
	}
	if !bytes.Equal(pkts[0].Data, data[offsets[0]:offsets[1]]) {
		t.Error("first packet does not start at the first frame header")
	}
}

func TestDemuxer_NoFrames(t *testing.T) {
	t.Parallel()

	demux, err := newDemuxer([]byte("no frames here"), testRate, 2, 16, 0)
	if err != nil {
		t.Fatalf("newDemuxer() error = %v", err)
	}
	if _, err := demux.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("NextPacket() error = %v, want io.EOF", err)
	}
}

func TestHeaderLen(t *testing.T) {
	t.Parallel()

	data, offsets := encodeStream(t)
	hdr := data[offsets[0]:offsets[1]]

	badCRC := bytes.Clone(hdr)
	n := headerLen(hdr, 2, 16)
	if n == 0 {
		t.Fatal("headerLen(first frame) = 0")
	}
	badCRC[n-1] ^= 0x01

	tests := []struct {
		name     string
		b        []byte
		channels int
		bits     int
		want     bool
	}{
		{"first frame", hdr, 2, 16, true},
		{"other channel count", hdr, 1, 16, false},
		{"other sample size", hdr, 2, 24, false},
		{"crc mismatch", badCRC, 2, 16, false},
		{"short", hdr[:4], 2, 16, false},
		{"no sync", hdr[1:], 2, 16, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := headerLen(tt.b, tt.channels, tt.bits) > 0; got != tt.want {
				t.Errorf("headerLen() > 0 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodedNumberLen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		b    []byte
		want int
	}{
		{[]byte{0x05}, 1},
		{[]byte{0xC2, 0x80}, 2},
		{[]byte{0xE0, 0x80, 0x80}, 3},
		{[]byte{0xFE, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}, 7},
		{[]byte{0x80}, 0},
		{[]byte{0xFF}, 0},
		{[]byte{0xC2, 0x00}, 0},
		{[]byte{0xE0, 0x80}, 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := codedNumberLen(tt.b); got != tt.want {
			t.Errorf("codedNumberLen(% x) = %d, want %d", tt.b, got, tt.want)
		}
	}
}

func TestNewDemuxer_InvalidStreamInfo(t *testing.T) {
	t.Parallel()

	if _, err := newDemuxer(nil, testRate, 0, 16, 0); !errors.Is(err, ErrInvalidStreamInfo) {
		t.Errorf("newDemuxer(0 channels) error = %v, want ErrInvalidStreamInfo", err)
	}
	if _, err := newDemuxer(nil, testRate, 2, 40, 0); !errors.Is(err, ErrInvalidStreamInfo) {
		t.Errorf("newDemuxer(40 bits) error = %v, want ErrInvalidStreamInfo", err)
	}
}
