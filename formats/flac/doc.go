// SPDX-License-Identifier: EPL-2.0

// Package flac provides the native FLAC container and the FLAC frame decoder
// for the audio pipeline.
//
// The demuxer splits the stream at frame headers (sync code plus a matching
// CRC-8) and emits each frame undecoded, with the STREAMINFO total frame
// count passed on as audio.TrackParams.Frames. The audio.CodecFLAC decoder
// parses frames with github.com/mewkiz/flac/frame. A frame that fails its
// CRC-16 check is reported as recoverable, so one damaged frame costs one
// block of audio instead of the file. The same decoder serves FLAC inside
// Ogg, where each packet is already one frame.
package flac
