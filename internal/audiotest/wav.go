// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// EncodeWAV renders interleaved samples in [-1, 1] as an integer PCM WAV file
// using the go-audio encoder.
func EncodeWAV(sampleRate, channels, bitDepth int, interleaved []float32) ([]byte, error) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("fixture.wav")
	if err != nil {
		return nil, err
	}

	scale := float64(int64(1)<<(bitDepth-1)) - 1
	ints := make([]int, len(interleaved))
	for i, s := range interleaved {
		v := int(math.Round(float64(s) * scale))
		if bitDepth == 8 {
			v += 128
		}
		ints[i] = v
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return afero.ReadFile(fs, "fixture.wav")
}

// Chunk is a raw RIFF chunk for BuildWAV.
type Chunk struct {
	ID   string
	Data []byte
}

// FmtChunk builds a plain 16-byte "fmt " chunk.
func FmtChunk(formatTag uint16, sampleRate, channels, bitsPerSample int) Chunk {
	blockAlign := channels * ((bitsPerSample + 7) / 8)
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, formatTag)
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	return Chunk{ID: "fmt ", Data: buf.Bytes()}
}

// BuildWAV assembles a RIFF/WAVE file from chunks, adding pad bytes after odd-sized chunks.
func BuildWAV(chunks ...Chunk) []byte {
	body := new(bytes.Buffer)
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.ID)
		binary.Write(body, binary.LittleEndian, uint32(len(c.Data)))
		body.Write(c.Data)
		if len(c.Data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// PCM16 packs int16 samples little-endian.
func PCM16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
