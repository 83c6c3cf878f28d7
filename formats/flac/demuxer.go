// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audingest/audio"
	"github.com/mewkiz/flac"
)

// Format is the native FLAC stream (fLaC signature).
// Packets are whole undecoded frames for the audio.CodecFLAC decoder.
type Format struct{}

func (Format) Name() string         { return "flac" }
func (Format) Extensions() []string { return []string{"flac"} }
func (Format) MIMETypes() []string  { return []string{"audio/flac", "audio/x-flac"} }

func (Format) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, []byte("fLaC"))
}

func (Format) Open(rs io.ReadSeeker) (audio.Demuxer, error) {
	stream, err := flac.New(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFLAC, err)
	}
	info := stream.Info

	// flac.New reads ahead through its own buffer, so the first frame offset
	// is found again from the metadata block headers.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := skipMetadata(rs); err != nil {
		return nil, err
	}
	frames, err := io.ReadAll(rs)
	if err != nil {
		return nil, err
	}

	return newDemuxer(frames, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample), int64(info.NSamples))
}

// skipMetadata leaves rs at the first audio frame.
func skipMetadata(rs io.ReadSeeker) error {
	var hdr [4]byte
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return fmt.Errorf("%w: %w", ErrNotFLAC, err)
	}
	for {
		if _, err := io.ReadFull(rs, hdr[:]); err != nil {
			return fmt.Errorf("%w: metadata block header: %w", ErrInvalidStreamInfo, err)
		}
		size := int64(binary.BigEndian.Uint32(hdr[:]) & 0x00FFFFFF)
		if _, err := rs.Seek(size, io.SeekCurrent); err != nil {
			return err
		}
		if hdr[0]&0x80 != 0 {
			return nil
		}
	}
}

type demuxer struct {
	data     []byte
	pos      int
	channels int
	bits     int
	track    audio.Track
}

func newDemuxer(frames []byte, sampleRate, channels, bitsPerSample int, totalFrames int64) (*demuxer, error) {
	if bitsPerSample < 4 || bitsPerSample > 32 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrInvalidStreamInfo, bitsPerSample)
	}
	if channels < 1 || channels > 8 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidStreamInfo, channels)
	}

	return &demuxer{
		data:     frames,
		channels: channels,
		bits:     bitsPerSample,
		track: audio.Track{
			ID: 0,
			Params: audio.TrackParams{
				Codec:        audio.CodecFLAC,
				SampleRate:   sampleRate,
				Channels:     channels,
				SampleFormat: audio.SampleFormat{Encoding: audio.EncodingSigned, Width: (bitsPerSample + 7) / 8, Bits: bitsPerSample},
				Frames:       totalFrames,
			},
		},
	}, nil
}

func (d *demuxer) Tracks() []audio.Track { return []audio.Track{d.track} }

// NextPacket returns the bytes from one frame header up to the next one.
// Bytes before the first valid header are skipped. Nothing is decoded here,
// so a damaged frame only costs its own packet.
func (d *demuxer) NextPacket() (audio.Packet, error) {
	start := d.findHeader(d.pos)
	if start < 0 {
		d.pos = len(d.data)
		return audio.Packet{}, io.EOF
	}

	end := d.findHeader(start + 2)
	if end < 0 {
		end = len(d.data)
	}
	d.pos = end

	return audio.Packet{TrackID: d.track.ID, Data: d.data[start:end]}, nil
}

func (d *demuxer) findHeader(from int) int {
	for from < len(d.data) {
		i := bytes.IndexByte(d.data[from:], 0xFF)
		if i < 0 {
			return -1
		}
		if headerLen(d.data[from+i:], d.channels, d.bits) > 0 {
			return from + i
		}
		from += i + 1
	}
	return -1
}

func (d *demuxer) Close() error { return nil }
