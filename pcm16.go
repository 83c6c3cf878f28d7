// SPDX-License-Identifier: EPL-2.0

package audingest

import "github.com/ik5/audingest/formats/wav"

// ToPCM16 converts pipeline output to 16-bit PCM, clamping to [-1, 1].
func ToPCM16(samples []float32) []int16 {
	return wav.PCM16(samples)
}
