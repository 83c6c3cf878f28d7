// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"

	"github.com/ik5/audingest/audio"
	resampling "github.com/tphakala/go-audio-resampling"
)

type polyphase struct {
	blockSize int
	channels  int
	rs        resampling.Resampler
	in        []float64
}

// NewPolyphase is the audio.ResamplerFactory for Polyphase.
func NewPolyphase(srcRate, dstRate, blockSize, channels int) (audio.BlockResampler, error) {
	if err := validate(srcRate, dstRate, blockSize, channels); err != nil {
		return nil, err
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return &polyphase{
		blockSize: blockSize,
		channels:  channels,
		rs:        rs,
		in:        make([]float64, blockSize*channels),
	}, nil
}

func (p *polyphase) Process(block []float32) ([]float32, error) {
	if err := checkBlock(block, p.blockSize, p.channels); err != nil {
		return nil, err
	}

	for i, v := range block {
		p.in[i] = float64(v)
	}

	res, err := p.rs.Process(p.in)
	if err != nil {
		return nil, fmt.Errorf("polyphase: %w", err)
	}

	out := make([]float32, len(res))
	for i, v := range res {
		out[i] = float32(v)
	}
	return out, nil
}
