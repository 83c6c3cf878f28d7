// SPDX-License-Identifier: EPL-2.0

// Package audio provides the building blocks of the decode pipeline.
//
// This package contains:
//   - MediaSource, a seekable input with an optional extension hint
//   - Format and Demuxer for containers, CodecDecoder for codecs
//   - Registry, which probes a MediaSource and builds codec decoders
//   - DecodeTrack, which turns one track into an interleaved float32 buffer
//   - Mixdown for channel averaging
//   - ConvertRate, which drives a BlockResampler over a mono buffer
//
// # Probing
//
// Registry.Probe reads the first bytes of the source and tries, in order,
// the format matching the hint, the formats matching the MIME type detected
// by github.com/gabriel-vasile/mimetype, and every format whose Sniff accepts
// the header. The first format that opens wins.
//
//	reg := audio.NewRegistry()
//	reg.RegisterFormat(wav.Format{})
//	reg.RegisterCodec(audio.CodecPCM, pcm.NewDecoder)
//
//	demux, format, err := reg.Probe(src, logger)
//
// # Decoding
//
// Demuxers return io.EOF at the end of the stream. A codec returns a
// DecodeError to classify a packet failure: Recoverable packets are skipped
// and logged, anything else stops decoding with ErrFatalDecode.
//
//	track, err := audio.SelectTrack(demux.Tracks())
//	interleaved, stats, err := audio.DecodeTrack(demux, track, reg, logger)
//	mono := audio.Mixdown(interleaved, track.Params.Channels)
//
// # Rate Conversion
//
// ConvertRate feeds a resampler fixed-size blocks in order and trims the
// result to ExpectedLength, so the output length never depends on the block
// size:
//
//	out, err := audio.ConvertRate(mono, 44100, 16000, audio.DefaultBlockSize, resample.NewSpectral)
package audio
