// SPDX-License-Identifier: EPL-2.0

// Package pcm decodes uncompressed PCM packets into float32 blocks.
//
// The layout of each sample is taken from audio.TrackParams.SampleFormat:
// signed or unsigned integers of 1 to 4 bytes in either byte order, or
// IEEE float of 4 or 8 bytes. Integer samples are MSB aligned inside their
// container and scaled by 2^(Bits-1), so full scale maps to [-1, 1).
//
// Register the decoder with an audio.Registry:
//
//	reg.RegisterCodec(audio.CodecPCM, pcm.NewDecoder)
//
// A packet that does not hold a whole number of frames is reported as a
// recoverable error and is skipped by the pipeline.
package pcm
