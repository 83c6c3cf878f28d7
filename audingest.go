// SPDX-License-Identifier: EPL-2.0

package audingest

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audingest/audio"
	"github.com/ik5/audingest/formats/aiff"
	"github.com/ik5/audingest/formats/flac"
	"github.com/ik5/audingest/formats/g711"
	"github.com/ik5/audingest/formats/mp3"
	"github.com/ik5/audingest/formats/ogg"
	"github.com/ik5/audingest/formats/pcm"
	"github.com/ik5/audingest/formats/vorbis"
	"github.com/ik5/audingest/formats/wav"
	"github.com/ik5/audingest/resample"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultTargetRate is the sample rate of the canonical output.
const DefaultTargetRate = 16000

// Pipeline decodes files into mono float32 samples at a fixed rate.
type Pipeline struct {
	targetRate int
	blockSize  int
	engine     resample.Engine
	factory    audio.ResamplerFactory
	log        *zap.Logger
	registry   *audio.Registry
	fs         afero.Fs
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTargetRate sets the output sample rate.
func WithTargetRate(rate int) Option {
	return func(p *Pipeline) { p.targetRate = rate }
}

// WithBlockSize sets how many frames are fed to the resampler per call.
func WithBlockSize(size int) Option {
	return func(p *Pipeline) { p.blockSize = size }
}

// WithResampler selects the resampler engine.
func WithResampler(engine resample.Engine) Option {
	return func(p *Pipeline) { p.engine = engine }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRegistry replaces the default set of formats and codecs.
func WithRegistry(reg *audio.Registry) Option {
	return func(p *Pipeline) { p.registry = reg }
}

// WithFs sets the filesystem DecodeFile and Probe read from.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// NewPipeline applies opts over the defaults: 16 kHz, 1024 frame blocks,
// the spectral engine, the OS filesystem and every bundled format.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		targetRate: DefaultTargetRate,
		blockSize:  audio.DefaultBlockSize,
		engine:     resample.Spectral,
		log:        zap.NewNop(),
		fs:         afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.targetRate <= 0 {
		return nil, fmt.Errorf("%w: target rate %d", audio.ErrInvalidRate, p.targetRate)
	}
	if p.blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidBlockSize, p.blockSize)
	}

	factory, err := resample.Factory(p.engine)
	if err != nil {
		return nil, err
	}
	p.factory = factory

	if p.registry == nil {
		p.registry = NewDefaultRegistry(p.log)
	}
	return p, nil
}

// NewDefaultRegistry registers every bundled container and codec. log
// receives container level diagnostics and may be nil.
func NewDefaultRegistry(log *zap.Logger) *audio.Registry {
	reg := audio.NewRegistry()

	reg.RegisterFormat(wav.Format{})
	reg.RegisterFormat(aiff.Format{})
	reg.RegisterFormat(flac.Format{})
	reg.RegisterFormat(ogg.Format{Logger: log})
	// MP3 sniffing matches bare frame sync words, keep it last.
	reg.RegisterFormat(mp3.Format{})

	reg.RegisterCodec(audio.CodecPCM, pcm.NewDecoder)
	reg.RegisterCodec(audio.CodecALaw, g711.NewDecoder)
	reg.RegisterCodec(audio.CodecULaw, g711.NewDecoder)
	reg.RegisterCodec(audio.CodecFLAC, flac.NewDecoder)
	reg.RegisterCodec(audio.CodecVorbis, vorbis.NewDecoder)

	return reg
}

// TargetRate is the sample rate of every buffer the pipeline returns.
func (p *Pipeline) TargetRate() int { return p.targetRate }

// Registry returns the formats and codecs the pipeline probes with.
func (p *Pipeline) Registry() *audio.Registry { return p.registry }

// DecodeFile decodes the file at path.
func (p *Pipeline) DecodeFile(path string) ([]float32, error) {
	src, err := audio.OpenFile(p.fs, path)
	if err != nil {
		return nil, err
	}
	defer p.closeSource(src)

	return p.decode(src, path)
}

// Decode decodes r. hint is a file extension used to order probing, it may be empty.
func (p *Pipeline) Decode(r io.Reader, hint string) ([]float32, error) {
	src, err := audio.NewMediaSource(r, hint)
	if err != nil {
		return nil, err
	}
	defer p.closeSource(src)

	return p.decode(src, hint)
}

func (p *Pipeline) decode(src *audio.MediaSource, name string) ([]float32, error) {
	start := time.Now()
	log := p.log.With(zap.String("source", name))

	demux, format, err := p.registry.Probe(src, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := demux.Close(); err != nil {
			log.Warn("closing demuxer", zap.Error(err))
		}
	}()

	track, err := audio.SelectTrack(demux.Tracks())
	if err != nil {
		return nil, err
	}

	log = log.With(
		zap.String("format", format.Name()),
		zap.String("codec", string(track.Params.Codec)),
		zap.Uint32("track", track.ID),
	)

	interleaved, stats, err := audio.DecodeTrack(demux, track, p.registry, log)
	if err != nil {
		return nil, err
	}

	mono := audio.Mixdown(interleaved, track.Params.Channels)

	out, err := audio.ConvertRate(mono, track.Params.SampleRate, p.targetRate, p.blockSize, p.factory)
	if err != nil {
		return nil, err
	}

	log.Info("decoded audio",
		zap.Int("source_rate", track.Params.SampleRate),
		zap.Int("channels", track.Params.Channels),
		zap.Int("rate", p.targetRate),
		zap.Int("samples", len(out)),
		zap.Duration("duration", Duration(len(out), p.targetRate)),
		zap.Int("skipped_packets", stats.SkippedPackets),
		zap.Bool("truncated", stats.Truncated),
		zap.String("resampler", string(p.engine)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

func (p *Pipeline) closeSource(src *audio.MediaSource) {
	if err := src.Close(); err != nil {
		p.log.Warn("closing source", zap.Error(err))
	}
}

// ProbeInfo describes a file without decoding it.
type ProbeInfo struct {
	Format string
	Tracks []audio.Track
}

// AudioTrack is the track DecodeFile would decode.
func (i ProbeInfo) AudioTrack() (audio.Track, error) {
	return audio.SelectTrack(i.Tracks)
}

// Probe opens path and reports its container and tracks.
func (p *Pipeline) Probe(path string) (ProbeInfo, error) {
	src, err := audio.OpenFile(p.fs, path)
	if err != nil {
		return ProbeInfo{}, err
	}
	defer p.closeSource(src)

	demux, format, err := p.registry.Probe(src, p.log.With(zap.String("source", path)))
	if err != nil {
		return ProbeInfo{}, err
	}
	defer demux.Close()

	return ProbeInfo{Format: format.Name(), Tracks: demux.Tracks()}, nil
}

// DecodeFile decodes path with a pipeline built from opts.
func DecodeFile(path string, opts ...Option) ([]float32, error) {
	p, err := NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	return p.DecodeFile(path)
}

// Decode decodes r with a pipeline built from opts.
func Decode(r io.Reader, hint string, opts ...Option) ([]float32, error) {
	p, err := NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	return p.Decode(r, hint)
}

// Duration is the playing time of n samples at rate.
func Duration(n, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(rate))
}
