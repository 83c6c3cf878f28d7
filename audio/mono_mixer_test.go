// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"
)

func TestMixdown_MonoPassthrough(t *testing.T) {
	t.Parallel()

	in := []float32{0.5, -0.25, 1}
	out := Mixdown(in, 1)

	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestMixdown_ChannelMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float32
	}{
		{"stereo", []float32{0.4, 0.6}},
		{"three", []float32{0.9, -0.3, 0.3}},
		{"quad", []float32{1, 0, -1, 0.5}},
		{"5.1", []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}},
		{"eight", []float32{1, 1, 1, 1, -1, -1, -1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			channels := len(tt.values)
			var want float64
			for _, v := range tt.values {
				want += float64(v)
			}
			want /= float64(channels)

			const frames = 64
			in := make([]float32, frames*channels)
			for i := range in {
				in[i] = tt.values[i%channels]
			}

			out := Mixdown(in, channels)
			if len(out) != frames {
				t.Fatalf("len = %d, want %d", len(out), frames)
			}
			for i, v := range out {
				if math.Abs(float64(v)-want) > 1e-6 {
					t.Fatalf("out[%d] = %v, want %v", i, v, want)
				}
			}
		})
	}
}

func TestMixdown_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	out := Mixdown([]float32{1, 1, 0.5}, 2)
	if len(out) != 1 || out[0] != 1 {
		t.Errorf("Mixdown() = %v, want [1]", out)
	}
}

func TestMixdown_Empty(t *testing.T) {
	t.Parallel()

	if out := Mixdown(nil, 2); len(out) != 0 {
		t.Errorf("Mixdown(nil) = %v, want empty", out)
	}
}

func BenchmarkMixdown_Stereo(b *testing.B) {
	in := make([]float32, 2*48000)
	for i := range in {
		in[i] = float32(i%100) / 100
	}

	b.ResetTimer()
	for b.Loop() {
		_ = Mixdown(in, 2)
	}
}

func BenchmarkMixdown_ManyChannels(b *testing.B) {
	in := make([]float32, 8*48000)

	b.ResetTimer()
	for b.Loop() {
		_ = Mixdown(in, 8)
	}
}
