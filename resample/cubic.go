// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"github.com/ik5/audingest/audio"
)

// cubic resamples with Catmull-Rom interpolation over a sliding window of
// four frames. Output frame j sits at source position j*ratio and is
// emitted once the two frames after it have arrived.
type cubic struct {
	blockSize int
	channels  int
	ratio     float64 // source frames per output frame

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames [4][]float32
	pushed int64
	next   int64

	// one-pole low-pass state, used when downsampling
	useFilter   bool
	filterAlpha float32
	filterState []float32
}

// NewCubic is the audio.ResamplerFactory for Cubic.
func NewCubic(srcRate, dstRate, blockSize, channels int) (audio.BlockResampler, error) {
	if err := validate(srcRate, dstRate, blockSize, channels); err != nil {
		return nil, err
	}

	ratio := float64(srcRate) / float64(dstRate)
	r := &cubic{
		blockSize:   blockSize,
		channels:    channels,
		ratio:       ratio,
		useFilter:   ratio > 1.0,
		filterState: make([]float32, channels),
	}
	if r.useFilter {
		r.filterAlpha = 0.5
	}
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}
	return r, nil
}

func (r *cubic) Process(block []float32) ([]float32, error) {
	if err := checkBlock(block, r.blockSize, r.channels); err != nil {
		return nil, err
	}

	out := make([]float32, 0, (int(float64(r.blockSize)/r.ratio)+2)*r.channels)
	for i := 0; i < len(block); i += r.channels {
		r.push(block[i : i+r.channels])

		// Interpolate between frames[1] (source index pushed-3) and frames[2].
		base := float64(r.pushed - 3)
		for {
			t := float64(r.next) * r.ratio
			if t >= base+1 {
				break
			}
			x := float32(t - base)
			for c := range r.channels {
				out = append(out, cubicInterpolate(r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], x))
			}
			r.next++
		}
	}
	return out, nil
}

func (r *cubic) push(frame []float32) {
	if r.pushed == 0 {
		// Warm up the window and filter on the first frame.
		copy(r.filterState, frame)
		for i := range r.frames {
			copy(r.frames[i], frame)
		}
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	copy(r.frames[3], frame)

	if r.useFilter {
		for c := range r.channels {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			r.frames[3][c] = r.filterAlpha*r.frames[3][c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = r.frames[3][c]
		}
	}
	r.pushed++
}

// cubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at
// x in [0, 1) between y1 and y2.
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
