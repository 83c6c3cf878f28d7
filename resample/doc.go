// SPDX-License-Identifier: EPL-2.0

// Package resample provides the block resamplers used by audio.ConvertRate.
//
// Every engine is stateful and expects blocks of exactly blockSize frames,
// interleaved when channels > 1. The amount of output per block varies, and
// engines with latency return less than blockSize*dst/src at first; the
// caller makes up the difference by pushing silent blocks.
//
// Engines:
//
//   - Spectral: windowed-sinc lowpass and rate change done per chunk in the
//     frequency domain with gonum's real FFT, joined by overlap-add. The
//     filter delay is trimmed, so output frame i lines up with input time
//     i/dst.
//   - Polyphase: github.com/tphakala/go-audio-resampling at high quality.
//   - Cubic: Catmull-Rom interpolation with a one-pole lowpass when
//     downsampling.
package resample
