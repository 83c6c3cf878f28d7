// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a RIFF/WAVE file")
	ErrMissingFmtChunk      = errors.New("wav file has no fmt chunk before data")
	ErrMissingDataChunk     = errors.New("wav file has no data chunk")
	ErrInvalidFmtChunk      = errors.New("invalid wav fmt chunk")
	ErrUnsupportedWavChunks = errors.New("unable to walk wav chunks")
	ErrUnsupportedBitDepth  = errors.New("unsupported bit depth for wav export")
)
