// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"
	"strings"

	"github.com/ik5/audingest/audio"
)

// Engine names a block resampler implementation.
type Engine string

const (
	// Spectral resamples each block in the frequency domain. It is the default.
	Spectral Engine = "spectral"
	// Polyphase uses the libsoxr derived FIR resampler.
	Polyphase Engine = "polyphase"
	// Cubic interpolates with Catmull-Rom splines. Cheapest, lowest quality.
	Cubic Engine = "cubic"
)

// Engines lists the known engines, default first.
func Engines() []Engine {
	return []Engine{Spectral, Polyphase, Cubic}
}

// ParseEngine accepts an engine name in any case. An empty name is Spectral.
func ParseEngine(name string) (Engine, error) {
	if name == "" {
		return Spectral, nil
	}
	e := Engine(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Engines() {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Factory returns the audio.ResamplerFactory for e.
func Factory(e Engine) (audio.ResamplerFactory, error) {
	switch e {
	case Spectral, "":
		return NewSpectral, nil
	case Polyphase:
		return NewPolyphase, nil
	case Cubic:
		return NewCubic, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, e)
}

func validate(srcRate, dstRate, blockSize, channels int) error {
	if srcRate <= 0 || dstRate <= 0 {
		return fmt.Errorf("%w: rate %d -> %d", ErrInvalidParams, srcRate, dstRate)
	}
	if blockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidParams, blockSize)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrInvalidParams, channels)
	}
	return nil
}

func checkBlock(block []float32, blockSize, channels int) error {
	if len(block) != blockSize*channels {
		return fmt.Errorf("%w: got %d samples, want %d", ErrBlockLength, len(block), blockSize*channels)
	}
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
