// SPDX-License-Identifier: EPL-2.0

package audingest_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audingest"
	"github.com/ik5/audingest/audio"
	"github.com/ik5/audingest/internal/audiotest"
	"github.com/ik5/audingest/resample"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var testMagic = []byte("TEST")

func testTrack(rate, channels int) []audio.Track {
	return []audio.Track{{
		ID:     1,
		Params: audio.TrackParams{Codec: audiotest.CodecTest, SampleRate: rate, Channels: channels},
	}}
}

func mockPipeline(t *testing.T, demux *audiotest.Demuxer, opts ...audingest.Option) *audingest.Pipeline {
	t.Helper()
	reg := audiotest.Registry(&audiotest.Format{FormatName: "test", Magic: testMagic, Demux: demux})
	p, err := audingest.NewPipeline(append([]audingest.Option{audingest.WithRegistry(reg)}, opts...)...)
	require.NoError(t, err)
	return p
}

func writeFixture(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func TestDecodeFile_StereoWAV(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data, err := audiotest.EncodeWAV(44100, 2, 16, audiotest.Interleave(88200, 2, audiotest.Sine(44100, 440)))
	require.NoError(t, err)
	writeFixture(t, fs, "/in/tone.wav", data)

	samples, err := audingest.DecodeFile("/in/tone.wav", audingest.WithFs(fs), audingest.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	// ceil(88200 * 16000 / 44100)
	assert.Len(t, samples, 32000)
	assert.Equal(t, 2*time.Second, audingest.Duration(len(samples), audingest.DefaultTargetRate))
}

func TestDecodeFile_EveryEngine(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data, err := audiotest.EncodeWAV(22050, 1, 16, audiotest.Interleave(22050, 1, audiotest.Sine(22050, 300)))
	require.NoError(t, err)
	writeFixture(t, fs, "/tone.wav", data)

	for _, engine := range resample.Engines() {
		t.Run(string(engine), func(t *testing.T) {
			t.Parallel()
			samples, err := audingest.DecodeFile("/tone.wav", audingest.WithFs(fs), audingest.WithResampler(engine))
			require.NoError(t, err)
			assert.Len(t, samples, 16000)
		})
	}
}

func TestDecode_Identity(t *testing.T) {
	t.Parallel()

	in := audiotest.Interleave(5000, 1, audiotest.Sine(16000, 1000))
	p := mockPipeline(t, &audiotest.Demuxer{
		TrackList: testTrack(16000, 1),
		Packets:   audiotest.Packetize(1, in, 1, 512),
	})

	out, err := p.Decode(bytes.NewReader(testMagic), "")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_MixdownIsMean(t *testing.T) {
	t.Parallel()

	in := audiotest.Interleave(1000, 3, audiotest.Constant(0.9, -0.3, 0.3))
	p := mockPipeline(t, &audiotest.Demuxer{
		TrackList: testTrack(16000, 3),
		Packets:   audiotest.Packetize(1, in, 3, 100),
	})

	out, err := p.Decode(bytes.NewReader(testMagic), "")
	require.NoError(t, err)
	require.Len(t, out, 1000)
	for i, v := range out {
		require.InDelta(t, 0.3, v, 1e-6, "sample %d", i)
	}
}

func TestDecode_CorruptPacketSkipped(t *testing.T) {
	t.Parallel()

	in := audiotest.Interleave(8000, 1, audiotest.Sine(8000, 200))
	pkts := audiotest.Packetize(1, in, 1, 800)
	pkts = append(pkts[:5:5], append([]audio.Packet{{TrackID: 1, Data: audiotest.CorruptPacket}}, pkts[5:]...)...)

	core, logs := observer.New(zap.DebugLevel)
	p := mockPipeline(t, &audiotest.Demuxer{TrackList: testTrack(8000, 1), Packets: pkts},
		audingest.WithLogger(zap.New(core)))

	out, err := p.Decode(bytes.NewReader(testMagic), "")
	require.NoError(t, err)
	assert.Len(t, out, 16000)

	skipped := logs.FilterMessage("skipping undecodable packet")
	require.Equal(t, 1, skipped.Len())
	assert.Equal(t, int64(5), skipped.All()[0].ContextMap()["packet"])

	summary := logs.FilterMessage("decoded audio").All()
	require.Len(t, summary, 1)
	assert.Equal(t, int64(1), summary[0].ContextMap()["skipped_packets"])
}

func TestDecode_FatalPacket(t *testing.T) {
	t.Parallel()

	pkts := audiotest.Packetize(1, audiotest.Interleave(100, 1, audiotest.Constant(0.1)), 1, 50)
	pkts = append(pkts, audio.Packet{TrackID: 1, Data: audiotest.FatalPacket})
	p := mockPipeline(t, &audiotest.Demuxer{TrackList: testTrack(16000, 1), Packets: pkts})

	_, err := p.Decode(bytes.NewReader(testMagic), "")
	assert.ErrorIs(t, err, audio.ErrFatalDecode)
	assert.ErrorIs(t, err, audiotest.ErrBroken)
}

func TestDecode_EmptyTrack(t *testing.T) {
	t.Parallel()

	demux := &audiotest.Demuxer{TrackList: testTrack(16000, 1)}
	p := mockPipeline(t, demux)

	_, err := p.Decode(bytes.NewReader(testMagic), "")
	assert.ErrorIs(t, err, audio.ErrEmptyDecodeResult)
	assert.True(t, demux.Closed, "demuxer not closed")
}

func TestDecode_PacketReadError(t *testing.T) {
	t.Parallel()

	ioErr := errors.New("disk on fire")
	p := mockPipeline(t, &audiotest.Demuxer{TrackList: testTrack(16000, 1), Err: ioErr})

	_, err := p.Decode(bytes.NewReader(testMagic), "")
	assert.ErrorIs(t, err, audio.ErrPacketRead)
	assert.ErrorIs(t, err, ioErr)
}

func TestDecode_NoAudioTrack(t *testing.T) {
	t.Parallel()

	p := mockPipeline(t, &audiotest.Demuxer{TrackList: []audio.Track{{ID: 3}}})

	_, err := p.Decode(bytes.NewReader(testMagic), "")
	assert.ErrorIs(t, err, audio.ErrNoAudioTrack)
}

func TestDecode_MissingSampleRate(t *testing.T) {
	t.Parallel()

	p := mockPipeline(t, &audiotest.Demuxer{TrackList: testTrack(0, 2)})

	_, err := p.Decode(bytes.NewReader(testMagic), "")
	assert.ErrorIs(t, err, audio.ErrMissingSampleRate)
}

func TestDecode_UnsupportedCodec(t *testing.T) {
	t.Parallel()

	tracks := []audio.Track{{ID: 1, Params: audio.TrackParams{Codec: audio.CodecOpus, SampleRate: 48000, Channels: 2}}}
	p := mockPipeline(t, &audiotest.Demuxer{TrackList: tracks})

	_, err := p.Decode(bytes.NewReader(testMagic), "")
	assert.ErrorIs(t, err, audio.ErrUnsupportedCodec)
}

func TestDecode_RandomBytes(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]byte, 8192)
	for i := range data {
		data[i] = byte(rng.UintN(256))
	}
	// Keep the random data from starting with an MP3 sync word.
	data[0], data[1] = 0x00, 0x00

	_, err := audingest.Decode(bytes.NewReader(data), "wav")
	assert.ErrorIs(t, err, audio.ErrUnrecognizedFormat)
}

func TestDecode_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := audingest.Decode(bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, audio.ErrUnrecognizedFormat)
}

func TestDecode_FLACCorruptFrameSkipped(t *testing.T) {
	t.Parallel()

	tone := func(ch, pos int) int32 { return int32(6000 * math.Sin(2*math.Pi*float64(220*(ch+1)*pos)/44100)) }
	data, offsets, err := audiotest.EncodeFLAC(44100, 2, 4096, 10, tone)
	require.NoError(t, err)
	data[offsets[5]+(offsets[6]-offsets[5])/2] ^= 0x5A

	core, logs := observer.New(zap.InfoLevel)
	out, err := audingest.Decode(bytes.NewReader(data), "flac",
		audingest.WithTargetRate(44100), audingest.WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Len(t, out, 9*4096)

	summary := logs.FilterMessage("decoded audio").All()
	require.Len(t, summary, 1)
	assert.Equal(t, "flac", summary[0].ContextMap()["codec"])
	assert.Equal(t, int64(1), summary[0].ContextMap()["skipped_packets"])
}

func TestDecode_MP3GarbageDoesNotPanic(t *testing.T) {
	t.Parallel()

	for seed := range uint64(20) {
		rng := rand.New(rand.NewPCG(7, seed))
		data := make([]byte, 4+10*1024)
		copy(data, []byte{0xFF, 0xFB, 0x90, 0x64})
		for i := 4; i < len(data); i++ {
			data[i] = byte(rng.UintN(256))
		}

		assert.NotPanics(t, func() {
			_, _ = audingest.Decode(bytes.NewReader(data), "mp3")
		}, "seed %d", seed)
	}
}

func TestDecode_WAVHugeDeclaredDataSize(t *testing.T) {
	t.Parallel()

	wav := audiotest.BuildWAV(audiotest.FmtChunk(1, 8000, 1, 16), audiotest.Chunk{ID: "data", Data: make([]byte, 20)})
	binary.LittleEndian.PutUint32(wav[40:44], 0xFFFFFF00)

	out, err := audingest.Decode(bytes.NewReader(wav), "wav")
	require.NoError(t, err)
	// 10 frames at 8 kHz.
	assert.Len(t, out, 20)
}

func TestDecode_WAVEmptyDataChunk(t *testing.T) {
	t.Parallel()

	wav := audiotest.BuildWAV(
		audiotest.FmtChunk(1, 8000, 1, 16),
		audiotest.Chunk{ID: "data"},
		audiotest.Chunk{ID: "LIST", Data: []byte("INFOISFT\x04\x00\x00\x00test")},
	)

	_, err := audingest.Decode(bytes.NewReader(wav), "wav")
	assert.ErrorIs(t, err, audio.ErrEmptyDecodeResult)
}

func TestDecodeFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := audingest.DecodeFile("/nope.wav", audingest.WithFs(afero.NewMemMapFs()))
	assert.ErrorIs(t, err, audio.ErrOpen)
}

func TestDecode_WrongHintStillProbes(t *testing.T) {
	t.Parallel()

	data, err := audiotest.EncodeWAV(16000, 1, 16, audiotest.Interleave(1600, 1, audiotest.Constant(0.5)))
	require.NoError(t, err)

	out, err := audingest.Decode(bytes.NewReader(data), "mp3")
	require.NoError(t, err)
	assert.Len(t, out, 1600)
}

func TestNewPipeline_Invalid(t *testing.T) {
	t.Parallel()

	_, err := audingest.NewPipeline(audingest.WithTargetRate(0))
	assert.ErrorIs(t, err, audio.ErrInvalidRate)

	_, err = audingest.NewPipeline(audingest.WithBlockSize(-1))
	assert.ErrorIs(t, err, audio.ErrInvalidBlockSize)

	_, err = audingest.NewPipeline(audingest.WithResampler("linear"))
	assert.ErrorIs(t, err, resample.ErrUnknownEngine)
}

func TestPipeline_Probe(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data, err := audiotest.EncodeWAV(8000, 2, 16, audiotest.Interleave(400, 2, audiotest.Constant(0.1, 0.2)))
	require.NoError(t, err)
	writeFixture(t, fs, "/a.wav", data)

	p, err := audingest.NewPipeline(audingest.WithFs(fs))
	require.NoError(t, err)

	info, err := p.Probe("/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "wav", info.Format)

	track, err := info.AudioTrack()
	require.NoError(t, err)
	assert.Equal(t, 8000, track.Params.SampleRate)
	assert.Equal(t, 2, track.Params.Channels)
	assert.Equal(t, int64(400), track.Params.Frames)
}

func TestPipeline_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data, err := audiotest.EncodeWAV(32000, 1, 16, audiotest.Interleave(3200, 1, audiotest.Sine(32000, 100)))
	require.NoError(t, err)
	writeFixture(t, fs, "/c.wav", data)

	p, err := audingest.NewPipeline(audingest.WithFs(fs))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.DecodeFile("/c.wav")
			assert.NoError(t, err)
			assert.Len(t, out, 1600)
		}()
	}
	wg.Wait()
}

func TestDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, audingest.Duration(16000, 16000))
	assert.Equal(t, 500*time.Millisecond, audingest.Duration(4000, 8000))
	assert.Equal(t, time.Duration(0), audingest.Duration(100, 0))
}

func TestToPCM16(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int16{0, 32767, -32767, 32767, -32767}, audingest.ToPCM16([]float32{0, 1, -1, 2, -2}))
}

// gateFormat blocks Open until release is closed.
type gateFormat struct {
	opened  chan struct{}
	release chan struct{}
	closed  chan struct{}
	demux   *audiotest.Demuxer
}

type gateDemuxer struct {
	*audiotest.Demuxer
	closed chan struct{}
}

func (d *gateDemuxer) Close() error {
	close(d.closed)
	return nil
}

func (g *gateFormat) Name() string         { return "gate" }
func (g *gateFormat) Extensions() []string { return []string{"gate"} }
func (g *gateFormat) MIMETypes() []string  { return nil }
func (g *gateFormat) Sniff(h []byte) bool  { return bytes.HasPrefix(h, testMagic) }

func (g *gateFormat) Open(io.ReadSeeker) (audio.Demuxer, error) {
	close(g.opened)
	<-g.release
	return &gateDemuxer{Demuxer: g.demux, closed: g.closed}, nil
}

func TestDecodeFileContext_Cancel(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "/slow.gate", testMagic)

	gate := &gateFormat{
		opened:  make(chan struct{}),
		release: make(chan struct{}),
		closed:  make(chan struct{}),
		demux: &audiotest.Demuxer{
			TrackList: testTrack(16000, 1),
			Packets:   audiotest.Packetize(1, audiotest.Interleave(10, 1, audiotest.Constant(0.5)), 1, 10),
		},
	}
	reg := audiotest.Registry(nil)
	reg.RegisterFormat(gate)

	p, err := audingest.NewPipeline(audingest.WithFs(fs), audingest.WithRegistry(reg))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := p.DecodeFileContext(ctx, "/slow.gate")
		errc <- err
	}()

	<-gate.opened
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	// The abandoned decode still finishes once unblocked.
	close(gate.release)
	select {
	case <-gate.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("abandoned decode never finished")
	}
}

func TestDecodeFileAsync(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data, err := audiotest.EncodeWAV(16000, 1, 16, audiotest.Interleave(160, 1, audiotest.Constant(0.25)))
	require.NoError(t, err)
	writeFixture(t, fs, "/x.wav", data)

	p, err := audingest.NewPipeline(audingest.WithFs(fs))
	require.NoError(t, err)

	res, ok := <-p.DecodeFileAsync(context.Background(), "/x.wav")
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Len(t, res.Samples, 160)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = <-p.DecodeFileAsync(ctx, "/x.wav")
	assert.ErrorIs(t, res.Err, context.Canceled)
}
