// SPDX-License-Identifier: EPL-2.0

package audio

// Mixdown averages each interleaved frame into one mono sample.
// A channel count of 1 (or less) returns the input unchanged.
// A trailing partial frame is dropped.
func Mixdown(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float32, frames)

	// Unrolled loop for common cases
	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			mono[f] = (interleaved[idx] + interleaved[idx+1]) * 0.5
		}
	case 4:
		for f := range frames {
			idx := f << 2
			sum := interleaved[idx] + interleaved[idx+1] + interleaved[idx+2] + interleaved[idx+3]
			mono[f] = sum * 0.25
		}
	default:
		invChannels := float32(1.0) / float32(channels)
		for f := range frames {
			var sum float32
			base := f * channels
			for _, s := range interleaved[base : base+channels] {
				sum += s
			}
			mono[f] = sum * invChannels
		}
	}

	return mono
}
