// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	ErrUnsupportedSampleFormat = errors.New("unsupported PCM sample format")
	ErrPartialFrame            = errors.New("packet does not hold whole frames")
)
