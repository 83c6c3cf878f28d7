// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// EncodeFLAC renders frames fixed-size blocks of 16-bit samples with the
// mewkiz encoder. It returns the stream and the byte offset of every frame.
func EncodeFLAC(sampleRate, channels, blockSize, frames int, sample func(ch, pos int) int32) ([]byte, []int, error) {
	var buf bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(blockSize),
		BlockSizeMax:  uint16(blockSize),
		SampleRate:    uint32(sampleRate),
		NChannels:     uint8(channels),
		BitsPerSample: 16,
		NSamples:      uint64(frames * blockSize),
	}
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, nil, fmt.Errorf("flac encoder: %w", err)
	}

	offsets := make([]int, 0, frames)
	for n := range frames {
		offsets = append(offsets, buf.Len())

		f := &frame.Frame{Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(blockSize),
			SampleRate:        uint32(sampleRate),
			Channels:          frame.Channels(channels - 1),
			BitsPerSample:     16,
		}}
		for ch := range channels {
			samples := make([]int32, blockSize)
			for i := range samples {
				samples[i] = sample(ch, n*blockSize+i)
			}
			f.Subframes = append(f.Subframes, &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  blockSize,
			})
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, nil, fmt.Errorf("flac frame %d: %w", n, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), offsets, nil
}
