// SPDX-License-Identifier: EPL-2.0

package resample

import "errors"

var (
	ErrUnknownEngine = errors.New("unknown resampler engine")
	ErrInvalidParams = errors.New("invalid resampler parameters")
	ErrBlockLength   = errors.New("block length does not match block size")
)
