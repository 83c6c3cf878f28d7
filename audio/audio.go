// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"

	goaudio "github.com/go-audio/audio"
)

// CodecID names the codec of a track, e.g. "pcm" or "vorbis".
type CodecID string

const (
	// CodecNull marks tracks that carry no decodable audio (data, video, unknown).
	CodecNull   CodecID = ""
	CodecPCM    CodecID = "pcm"
	CodecALaw   CodecID = "alaw"
	CodecULaw   CodecID = "ulaw"
	CodecVorbis CodecID = "vorbis"
	CodecOpus   CodecID = "opus"
	CodecFLAC   CodecID = "flac"
)

// Encoding of raw PCM payloads.
type Encoding uint8

const (
	EncodingSigned Encoding = iota
	EncodingUnsigned
	EncodingFloat
)

func (e Encoding) String() string {
	switch e {
	case EncodingSigned:
		return "signed"
	case EncodingUnsigned:
		return "unsigned"
	case EncodingFloat:
		return "float"
	}
	return "unknown"
}

// SampleFormat describes how one sample is laid out inside a PCM packet.
type SampleFormat struct {
	Encoding Encoding
	// Width is the number of bytes one sample occupies in the payload.
	Width int
	// Bits is the number of significant bits, used for scaling to [-1, 1].
	Bits      int
	BigEndian bool
}

// TrackParams are the codec parameters a demuxer reports for a track.
type TrackParams struct {
	Codec CodecID
	// SampleRate in Hz. Zero means the container did not report one.
	SampleRate int
	// Channels count. Zero means unspecified and is treated as mono.
	Channels     int
	SampleFormat SampleFormat
	// ExtraData holds codec setup packets (e.g. Vorbis headers).
	ExtraData [][]byte
	// Frames is the total number of frames when the container knows it, 0 otherwise.
	Frames int64
}

// Track is one elementary stream inside a container.
type Track struct {
	ID     uint32
	Params TrackParams
}

// Packet is one unit of compressed data belonging to a single track.
type Packet struct {
	TrackID uint32
	Data    []byte
}

// Demuxer splits an opened container into tracks and packets.
type Demuxer interface {
	// Tracks lists the tracks found while opening the container.
	Tracks() []Track
	// NextPacket returns the next packet of any track. io.EOF marks the normal end of the stream.
	NextPacket() (Packet, error)
	Close() error
}

// Format recognizes and opens one container format.
type Format interface {
	Name() string
	Extensions() []string
	MIMETypes() []string
	// Sniff reports whether header looks like the beginning of this format.
	Sniff(header []byte) bool
	Open(rs io.ReadSeeker) (Demuxer, error)
}

// CodecDecoder turns packets of one track into PCM blocks.
// Implementations keep state between calls, packets must be fed in stream order.
type CodecDecoder interface {
	// Decode returns the samples of one packet. A nil or empty block is valid.
	// Errors wrapped with NewRecoverableError let the caller skip the packet.
	Decode(p Packet) (*goaudio.Float32Buffer, error)
	Close() error
}

// CodecFactory builds a decoder for the given track parameters.
type CodecFactory func(params TrackParams) (CodecDecoder, error)
