// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	ErrMissingHeaders  = errors.New("vorbis track needs 3 header packets")
	ErrInvalidHeader   = errors.New("invalid vorbis header")
	ErrChannelMismatch = errors.New("vorbis channel count mismatch")
)
