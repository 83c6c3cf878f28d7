// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// maxPreallocSamples caps the capacity reserved from a container's frame
// estimate. Headers are untrusted, the buffer still grows past it on demand.
const maxPreallocSamples = 1 << 24

// SelectTrack returns the first track with a decodable codec.
// A missing channel count is reported as mono.
func SelectTrack(tracks []Track) (Track, error) {
	for _, t := range tracks {
		if t.Params.Codec == CodecNull {
			continue
		}
		if t.Params.SampleRate <= 0 {
			return Track{}, fmt.Errorf("%w: track %d", ErrMissingSampleRate, t.ID)
		}
		if t.Params.Channels <= 0 {
			t.Params.Channels = 1
		}
		return t, nil
	}
	return Track{}, ErrNoAudioTrack
}

// preallocSamples is the capacity to reserve for frames of channels samples.
func preallocSamples(frames int64, channels int) int {
	if frames <= 0 || channels <= 0 {
		return 0
	}
	if frames > maxPreallocSamples/int64(channels) {
		return maxPreallocSamples
	}
	return int(frames) * channels
}

// DecodeStats summarizes one DecodeTrack call.
type DecodeStats struct {
	Packets        int
	ForeignPackets int
	SkippedPackets int
	EmptyBlocks    int
	Frames         int
	Truncated      bool
}

// DecodeTrack decodes every packet of track into one interleaved buffer.
// Packets of other tracks are ignored and recoverable decode errors skip the packet.
func DecodeTrack(demux Demuxer, track Track, reg *Registry, log *zap.Logger) ([]float32, DecodeStats, error) {
	var stats DecodeStats
	if log == nil {
		log = zap.NewNop()
	}
	channels := max(track.Params.Channels, 1)

	dec, err := reg.NewDecoder(track.Params)
	if err != nil {
		return nil, stats, err
	}
	defer func() {
		if err := dec.Close(); err != nil {
			log.Warn("closing codec decoder", zap.Error(err))
		}
	}()

	interleaved := make([]float32, 0, preallocSamples(track.Params.Frames, channels))

	for {
		pkt, err := demux.NextPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				stats.Truncated = true
				log.Warn("stream ended mid-packet, keeping decoded audio",
					zap.Int("packets", stats.Packets),
				)
				break
			}
			return nil, stats, fmt.Errorf("%w: %w", ErrPacketRead, err)
		}

		if pkt.TrackID != track.ID {
			stats.ForeignPackets++
			continue
		}
		stats.Packets++

		block, err := dec.Decode(pkt)
		if err != nil {
			if IsRecoverable(err) {
				stats.SkippedPackets++
				log.Debug("skipping undecodable packet",
					zap.Int("packet", stats.Packets-1),
					zap.Uint32("track", pkt.TrackID),
					zap.Error(err),
				)
				continue
			}
			return nil, stats, fmt.Errorf("%w: packet %d: %w", ErrFatalDecode, stats.Packets-1, err)
		}

		if block == nil || block.Format == nil || block.NumFrames() == 0 {
			stats.EmptyBlocks++
			continue
		}
		if block.Format.NumChannels != channels {
			return nil, stats, fmt.Errorf("%w: %w: got %d, want %d",
				ErrFatalDecode, ErrChannelMismatch, block.Format.NumChannels, channels)
		}

		frames := block.NumFrames()
		interleaved = append(interleaved, block.Data[:frames*channels]...)
		stats.Frames += frames
	}

	if stats.SkippedPackets > 0 || stats.ForeignPackets > 0 {
		log.Debug("decode summary",
			zap.Int("packets", stats.Packets),
			zap.Int("skipped", stats.SkippedPackets),
			zap.Int("foreign", stats.ForeignPackets),
			zap.Int("empty_blocks", stats.EmptyBlocks),
		)
	}

	if len(interleaved) == 0 {
		return nil, stats, fmt.Errorf("%w: track %d", ErrEmptyDecodeResult, track.ID)
	}
	return interleaved, stats, nil
}
