// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// # Reading
//
// Format implements audio.Format. Open walks the RIFF chunk list, skipping
// chunks it does not need (LIST, JUNK, fact, ...) including their pad bytes,
// until it reaches the data chunk. The single track it reports describes the
// fmt chunk:
//
//   - PCM 8-bit unsigned, 16/24/32-bit signed
//   - IEEE float 32/64-bit
//   - A-law and µ-law
//   - WAVE_FORMAT_EXTENSIBLE with any of the above as sub-format
//
// Other format tags are reported with a codec id of the form "wav:0x0002",
// so decoder construction fails with audio.ErrUnsupportedCodec rather than
// the probe failing.
//
// Packets carry up to 4096 whole frames of raw data. A data chunk size of 0
// or 0xFFFFFFFF (streamed files) is read until end of file. When the file is
// shorter than the declared chunk size the demuxer returns the whole frames
// it found and then io.ErrUnexpectedEOF.
//
// # Writing
//
// WriteWAV16 writes mono 16-bit PCM to any io.Writer:
//
//	samples := wav.PCM16(floatSamples)
//	wav.WriteWAV16(file, 16000, samples)
//
// Encode writes 16, 24 or 32-bit PCM through github.com/go-audio/wav and
// needs an io.WriteSeeker.
package wav
