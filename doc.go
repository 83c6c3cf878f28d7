// SPDX-License-Identifier: EPL-2.0

// Package audingest turns an audio file of any supported container and codec
// into one canonical signal: mono float32 samples at a fixed rate, 16 kHz by
// default.
//
// # Quick Start
//
//	samples, err := audingest.DecodeFile("meeting.flac")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(audingest.Duration(len(samples), audingest.DefaultTargetRate))
//
// # Pipeline
//
// Every call runs the same three stages, stopping at the first error:
//
//  1. Probe: the registry sniffs the content (and the file extension as a
//     hint) and opens a demuxer for the matching container.
//  2. Decode: the first track with a known codec is decoded packet by packet.
//     Packets the codec reports as recoverable are skipped and logged. The
//     interleaved result is then averaged down to mono.
//  3. Convert: the mono buffer is resampled in fixed-size blocks and cut to
//     exactly ceil(n * target / source) samples.
//
// A Pipeline holds the settings (target rate, block size, resampler engine,
// logger, registry, filesystem) and is safe for concurrent use; each call
// owns its own source, decoder and resampler.
//
//	p, err := audingest.NewPipeline(
//	    audingest.WithTargetRate(8000),
//	    audingest.WithResampler(resample.Polyphase),
//	    audingest.WithLogger(logger),
//	)
//
// # Supported Formats
//
//   - WAV: PCM 8/16/24/32-bit, float, A-law and µ-law via formats/wav
//   - AIFF/AIFC via formats/aiff
//   - FLAC via formats/flac
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/ogg and formats/vorbis
//
// # Writing WAV Files
//
//	pcm := audingest.ToPCM16(samples)
//	file, _ := os.Create("output.wav")
//	wav.WriteWAV16(file, 16000, pcm)
package audingest
