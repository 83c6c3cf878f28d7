// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"math"

	"github.com/ik5/audingest/audio"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// cutoffMargin keeps the lowpass edge below the output Nyquist frequency.
	cutoffMargin = 0.95
	// maxTaps bounds the lowpass length, and with it the group delay, when
	// co-prime rates make a chunk a whole second long.
	maxTaps = 1023
)

// spectral converts chunks of sizeIn frames into sizeOut frames. sizeIn and
// sizeOut are the smallest multiples of src/gcd and dst/gcd covering a
// block, so every chunk maps to a whole number of output frames. The lowpass
// is linear phase, and its delay is removed from the start of the output.
type spectral struct {
	blockSize int
	channels  int
	sizeIn    int
	sizeOut   int

	fftIn  *fourier.FFT
	fftOut *fourier.FFT
	filter []complex128
	scale  float64

	// skip is the number of leading output frames still to drop. They
	// cover the lowpass group delay.
	skip int

	states []*spectralChannel
}

type spectralChannel struct {
	pending []float64
	tail    []float64

	seq   []float64
	coeff []complex128
	shift []complex128
	res   []float64
}

// NewSpectral is the audio.ResamplerFactory for Spectral.
func NewSpectral(srcRate, dstRate, blockSize, channels int) (audio.BlockResampler, error) {
	if err := validate(srcRate, dstRate, blockSize, channels); err != nil {
		return nil, err
	}

	g := gcd(srcRate, dstRate)
	inUnit, outUnit := srcRate/g, dstRate/g
	chunks := (blockSize + inUnit - 1) / inUnit

	s := &spectral{
		blockSize: blockSize,
		channels:  channels,
		sizeIn:    chunks * inUnit,
		sizeOut:   chunks * outUnit,
	}
	s.fftIn = fourier.NewFFT(2 * s.sizeIn)
	s.fftOut = fourier.NewFFT(2 * s.sizeOut)
	s.scale = 1 / float64(2*s.sizeIn)

	taps := min(s.sizeIn, maxTaps)
	if taps%2 == 0 {
		taps--
	}
	fc := 0.5 * min(1, float64(dstRate)/float64(srcRate)) * cutoffMargin
	kernel := make([]float64, 2*s.sizeIn)
	copy(kernel, lowpass(taps, fc))
	s.filter = s.fftIn.Coefficients(nil, kernel)
	s.skip = int(math.Round(float64(taps-1) / 2 * float64(dstRate) / float64(srcRate)))

	s.states = make([]*spectralChannel, channels)
	for i := range s.states {
		s.states[i] = &spectralChannel{
			tail:  make([]float64, s.sizeOut),
			seq:   make([]float64, 2*s.sizeIn),
			coeff: make([]complex128, s.sizeIn+1),
			shift: make([]complex128, s.sizeOut+1),
			res:   make([]float64, 2*s.sizeOut),
		}
	}
	return s, nil
}

func (s *spectral) Process(block []float32) ([]float32, error) {
	if err := checkBlock(block, s.blockSize, s.channels); err != nil {
		return nil, err
	}

	for ch, st := range s.states {
		for i := ch; i < len(block); i += s.channels {
			st.pending = append(st.pending, float64(block[i]))
		}
	}

	// All channels hold the same amount of pending input.
	chunks := len(s.states[0].pending) / s.sizeIn
	out := make([]float32, chunks*s.sizeOut*s.channels)

	for ch, st := range s.states {
		for c := range chunks {
			y := s.chunk(st, st.pending[c*s.sizeIn:(c+1)*s.sizeIn])
			base := c * s.sizeOut
			for i, v := range y {
				out[(base+i)*s.channels+ch] = float32(v)
			}
		}
		n := copy(st.pending, st.pending[chunks*s.sizeIn:])
		st.pending = st.pending[:n]
	}

	if s.skip > 0 {
		drop := min(s.skip, chunks*s.sizeOut)
		s.skip -= drop
		out = out[drop*s.channels:]
	}
	return out, nil
}

// chunk filters and rescales one chunk, returning sizeOut finished frames.
func (s *spectral) chunk(st *spectralChannel, in []float64) []float64 {
	copy(st.seq, in)
	clear(st.seq[len(in):])
	s.fftIn.Coefficients(st.coeff, st.seq)

	clear(st.shift)
	bins := min(s.sizeIn, s.sizeOut)
	for k := 0; k <= bins; k++ {
		st.shift[k] = st.coeff[k] * s.filter[k]
	}
	// The output Nyquist bin of a real signal is real.
	st.shift[s.sizeOut] = complex(real(st.shift[s.sizeOut]), 0)

	s.fftOut.Sequence(st.res, st.shift)

	done := make([]float64, s.sizeOut)
	for i := range done {
		done[i] = st.res[i]*s.scale + st.tail[i]
	}
	for i := range st.tail {
		st.tail[i] = st.res[s.sizeOut+i] * s.scale
	}
	return done
}

// lowpass returns a Blackman windowed sinc of length n with cutoff fc in
// cycles per sample, normalized to unity gain at DC.
func lowpass(n int, fc float64) []float64 {
	h := make([]float64, n)
	center := float64(n-1) / 2
	var sum float64
	for i := range h {
		x := float64(i) - center
		v := 2 * fc
		if x != 0 {
			v = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
		}
		// Window of length n+2 without its zero end points.
		p := 2 * math.Pi * float64(i+1) / float64(n+1)
		v *= 0.42 - 0.5*math.Cos(p) + 0.08*math.Cos(2*p)
		h[i] = v
		sum += v
	}
	if sum != 0 {
		for i := range h {
			h[i] /= sum
		}
	}
	return h
}
