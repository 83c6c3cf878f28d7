// SPDX-License-Identifier: EPL-2.0

// Package ogg demultiplexes Ogg files into per-stream packets.
//
// Pages are checked against their CRC and pages that fail are dropped with a
// warning. Packets spanning several pages are joined back together. The
// first packet of each logical stream names its codec:
//
//   - Vorbis: the three header packets are passed as TrackParams.ExtraData
//     for formats/vorbis.
//   - Opus: reported at 48 kHz. No decoder is registered for it.
//   - FLAC: reported with its STREAMINFO parameters. Every audio packet is
//     one frame for the formats/flac decoder.
//
// Any other stream (Skeleton, Theora, ...) is reported with audio.CodecNull
// so track selection passes over it.
//
// For single-stream Vorbis files the total length is taken from
// github.com/jfreymuth/oggvorbis.
package ogg
