// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
)

// DefaultBlockSize is the number of input frames fed to a resampler per call.
const DefaultBlockSize = 1024

// BlockResampler converts fixed-size blocks of interleaved samples.
// It is stateful, blocks must be submitted strictly in order.
type BlockResampler interface {
	// Process converts exactly one block of blockSize frames.
	Process(block []float32) ([]float32, error)
}

// ResamplerFactory builds a resampler for one conversion.
type ResamplerFactory func(srcRate, dstRate, blockSize, channels int) (BlockResampler, error)

// ExpectedLength is ceil(n * dstRate / srcRate).
func ExpectedLength(n, srcRate, dstRate int) int {
	if n <= 0 || srcRate <= 0 || dstRate <= 0 {
		return 0
	}
	num := int64(n) * int64(dstRate)
	return int((num + int64(srcRate) - 1) / int64(srcRate))
}

// ConvertRate resamples a mono buffer from srcRate to dstRate.
//
// The input is cut into blocks of blockSize samples, the last one zero padded,
// and pushed in order through a single resampler. The concatenated output is
// truncated to ExpectedLength. When the resampler's latency leaves the output
// short, silent blocks are pushed until it catches up.
func ConvertRate(mono []float32, srcRate, dstRate, blockSize int, factory ResamplerFactory) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: %w: %d -> %d", ErrResample, ErrInvalidRate, srcRate, dstRate)
	}
	if srcRate == dstRate {
		return mono, nil
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrResample, ErrInvalidBlockSize, blockSize)
	}

	want := ExpectedLength(len(mono), srcRate, dstRate)
	if want == 0 {
		return []float32{}, nil
	}

	rs, err := factory(srcRate, dstRate, blockSize, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResample, err)
	}

	out := make([]float32, 0, want+ExpectedLength(blockSize, srcRate, dstRate))
	block := make([]float32, blockSize)

	for start := 0; start < len(mono); start += blockSize {
		n := copy(block, mono[start:])
		clear(block[n:])

		res, err := rs.Process(block)
		if err != nil {
			return nil, fmt.Errorf("%w: block at %d: %w", ErrResample, start, err)
		}
		out = append(out, res...)
	}

	clear(block)
	maxDrain := (srcRate+blockSize-1)/blockSize + 2
	for i := 0; len(out) < want; i++ {
		if i == maxDrain {
			return nil, fmt.Errorf("%w: produced %d of %d samples", ErrResample, len(out), want)
		}
		res, err := rs.Process(block)
		if err != nil {
			return nil, fmt.Errorf("%w: drain: %w", ErrResample, err)
		}
		out = append(out, res...)
	}

	return out[:want], nil
}
