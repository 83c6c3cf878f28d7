// SPDX-License-Identifier: EPL-2.0

// Package aiff provides the AIFF container for the audio pipeline.
//
// This package uses github.com/go-audio/aiff to parse the COMM and SSND
// chunks. Samples of any bit depth up to 32 are re-packed into 32-bit
// little-endian words, MSB aligned, and described as signed PCM with the
// original bit depth so the pcm codec can scale them.
//
//	reg.RegisterFormat(aiff.Format{})
//	reg.RegisterCodec(audio.CodecPCM, pcm.NewDecoder)
package aiff
