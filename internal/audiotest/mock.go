// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audingest/audio"
)

// CodecTest is the codec id handled by Codec.
const CodecTest audio.CodecID = "test"

var (
	// CorruptPacket makes Codec return a recoverable error.
	CorruptPacket = []byte("corrupt")
	// FatalPacket makes Codec return a fatal error.
	FatalPacket = []byte("fatal")

	ErrCorrupt = errors.New("corrupt test packet")
	ErrBroken  = errors.New("broken test decoder")
)

// Waveform generates the value of one sample.
type Waveform func(frame, channel int) float32

// Sine returns a waveform of the given frequency, same on every channel.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	}
}

// Constant returns a waveform with a fixed value per channel.
func Constant(values ...float32) Waveform {
	return func(_, channel int) float32 {
		return values[channel%len(values)]
	}
}

// Interleave renders frames of a waveform into an interleaved buffer.
func Interleave(frames, channels int, wave Waveform) []float32 {
	out := make([]float32, frames*channels)
	for f := range frames {
		for c := range channels {
			out[f*channels+c] = wave(f, c)
		}
	}
	return out
}

// EncodeFloat32 packs samples as little-endian float32 for Codec packets.
func EncodeFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// Packetize splits interleaved samples into packets of at most frames frames.
func Packetize(trackID uint32, interleaved []float32, channels, frames int) []audio.Packet {
	step := frames * channels
	var pkts []audio.Packet
	for start := 0; start < len(interleaved); start += step {
		end := min(start+step, len(interleaved))
		pkts = append(pkts, audio.Packet{TrackID: trackID, Data: EncodeFloat32(interleaved[start:end])})
	}
	return pkts
}

// Demuxer replays a fixed packet list.
type Demuxer struct {
	TrackList []audio.Track
	Packets   []audio.Packet
	// Err, when set, is returned instead of io.EOF after the packets run out.
	Err    error
	Closed bool

	next int
}

func (d *Demuxer) Tracks() []audio.Track { return d.TrackList }

func (d *Demuxer) NextPacket() (audio.Packet, error) {
	if d.next >= len(d.Packets) {
		if d.Err != nil {
			return audio.Packet{}, d.Err
		}
		return audio.Packet{}, io.EOF
	}
	p := d.Packets[d.next]
	d.next++
	return p, nil
}

func (d *Demuxer) Close() error {
	d.Closed = true
	return nil
}

// Format serves a prepared Demuxer for content starting with Magic.
type Format struct {
	FormatName string
	Magic      []byte
	Demux      *Demuxer
}

func (f *Format) Name() string         { return f.FormatName }
func (f *Format) Extensions() []string { return []string{f.FormatName} }
func (f *Format) MIMETypes() []string  { return nil }

func (f *Format) Sniff(header []byte) bool {
	return len(header) >= len(f.Magic) && string(header[:len(f.Magic)]) == string(f.Magic)
}

func (f *Format) Open(_ io.ReadSeeker) (audio.Demuxer, error) {
	return f.Demux, nil
}

// Codec decodes packets produced by EncodeFloat32.
type Codec struct {
	channels   int
	sampleRate int
	Decoded    int
	Closed     bool
}

// NewCodec is an audio.CodecFactory for CodecTest.
func NewCodec(params audio.TrackParams) (audio.CodecDecoder, error) {
	return &Codec{channels: max(params.Channels, 1), sampleRate: params.SampleRate}, nil
}

func (c *Codec) Decode(p audio.Packet) (*goaudio.Float32Buffer, error) {
	switch string(p.Data) {
	case string(CorruptPacket):
		return nil, audio.NewRecoverableError(ErrCorrupt)
	case string(FatalPacket):
		return nil, audio.NewFatalError(ErrBroken)
	}
	if len(p.Data)%4 != 0 {
		return nil, audio.NewRecoverableError(ErrCorrupt)
	}

	data := make([]float32, len(p.Data)/4)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(p.Data[i*4:]))
	}
	c.Decoded++
	return &goaudio.Float32Buffer{
		Format: &goaudio.Format{NumChannels: c.channels, SampleRate: c.sampleRate},
		Data:   data,
	}, nil
}

func (c *Codec) Close() error {
	c.Closed = true
	return nil
}

// Registry returns a registry with CodecTest and, if given, the format f.
func Registry(f *Format) *audio.Registry {
	reg := audio.NewRegistry()
	reg.RegisterCodec(CodecTest, NewCodec)
	if f != nil {
		reg.RegisterFormat(f)
	}
	return reg
}
