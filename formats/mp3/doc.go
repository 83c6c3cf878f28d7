// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides the MP3 container for the audio pipeline.
//
// This package uses github.com/hajimehoshi/go-mp3. The library decodes while
// it reads, so the demuxer emits packets of 16-bit little-endian PCM (4096
// frames each) and reports the track as audio.CodecPCM. go-mp3 always
// produces 2 channels, mono files are duplicated into both.
//
// Content is recognized by an ID3v2 tag or an MPEG audio layer III frame
// header at the start of the stream.
package mp3
