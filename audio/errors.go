// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrOpen               = errors.New("unable to open audio source")
	ErrUnrecognizedFormat = errors.New("unrecognized container format")
	ErrNoAudioTrack       = errors.New("no audio track found")
	ErrMissingSampleRate  = errors.New("track has no sample rate")
	ErrUnsupportedCodec   = errors.New("unsupported codec")
	ErrPacketRead         = errors.New("failed to read packet")
	ErrFatalDecode        = errors.New("fatal decode error")
	ErrEmptyDecodeResult  = errors.New("no samples decoded")
	ErrResample           = errors.New("resample failed")
	ErrInvalidRate        = errors.New("sample rate must be positive")
	ErrInvalidBlockSize   = errors.New("block size must be positive")
	ErrChannelMismatch    = errors.New("decoded channel count does not match track")
)

// DecodeErrorKind separates packet errors that can be skipped from those that end decoding.
type DecodeErrorKind uint8

const (
	Recoverable DecodeErrorKind = iota + 1
	Fatal
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// DecodeError is returned by codec decoders for a single packet.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode error: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewRecoverableError marks err as a per-packet failure the pipeline may skip.
func NewRecoverableError(err error) error {
	return &DecodeError{Kind: Recoverable, Err: err}
}

// NewFatalError marks err as a decoder fault that ends the call.
func NewFatalError(err error) error {
	return &DecodeError{Kind: Fatal, Err: err}
}

// IsRecoverable reports whether err carries a Recoverable DecodeError.
// Errors without a DecodeError in their chain are treated as fatal.
func IsRecoverable(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == Recoverable
}
