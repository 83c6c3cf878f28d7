// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Vorbis audio packets.
//
// This package uses github.com/jfreymuth/vorbis. Packets come from a
// container demuxer (see formats/ogg), which also supplies the three header
// packets (identification, comment and setup) in audio.TrackParams.ExtraData.
//
//	reg.RegisterCodec(audio.CodecVorbis, vorbis.NewDecoder)
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: as declared by the identification header
//   - Sample rate: as declared by the identification header
//
// # Errors
//
// Missing or malformed headers fail decoder construction. A packet that
// cannot be decoded is returned as a recoverable error so the pipeline can
// skip it and keep going. The first audio packet yields no samples; this is
// how Vorbis primes its overlap window and is not an error.
package vorbis
