// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrNotMP3 indicates go-mp3 could not find a decodable frame.
	ErrNotMP3 = errors.New("not an MP3 stream")
	// ErrCorruptStream is returned when go-mp3 fails on damaged frame data.
	ErrCorruptStream = errors.New("corrupt mp3 frame data")
)
