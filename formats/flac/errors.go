// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrNotFLAC           = errors.New("not a FLAC stream")
	ErrInvalidStreamInfo = errors.New("invalid FLAC stream info")
	ErrInvalidFrame      = errors.New("invalid FLAC frame")
)
