// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audingest/audio"
	"github.com/jfreymuth/oggvorbis"
	"go.uber.org/zap"
)

// Format is the Ogg container. Each logical bitstream becomes a track whose
// ID is the stream serial number.
type Format struct {
	// Logger receives page level diagnostics. nil discards them.
	Logger *zap.Logger
}

func (Format) Name() string         { return "ogg" }
func (Format) Extensions() []string { return []string{"ogg", "oga", "opus"} }
func (Format) MIMETypes() []string {
	return []string{"audio/ogg", "application/ogg", "audio/x-ogg", "audio/opus"}
}

func (Format) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, capturePattern)
}

// Open reads the beginning-of-stream pages and the header packets of every
// logical stream found there.
func (f Format) Open(rs io.ReadSeeker) (audio.Demuxer, error) {
	log := f.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// oggvorbis walks the file on its own; the result is only a hint.
	vorbisLength, _, lengthErr := oggvorbis.GetLength(rs)
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotOgg, err)
	}

	d := &demuxer{
		pages:   newPageReader(rs, log),
		streams: make(map[uint32]*logicalStream),
		log:     log,
	}

	bosDone := false
	for !bosDone || !d.headersComplete() {
		p, err := d.pages.next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.eof = err
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrNotOgg, err)
		}
		if !p.bos() {
			bosDone = true
		}
		d.feed(p)
	}

	if len(d.order) == 0 {
		return nil, ErrNotOgg
	}

	if lengthErr == nil && vorbisLength > 0 && len(d.order) == 1 && d.order[0].params.Codec == audio.CodecVorbis {
		d.order[0].params.Frames = vorbisLength
	}

	return d, nil
}

type logicalStream struct {
	serial uint32
	params audio.TrackParams
	// headersLeft is -1 until the first packet identifies the codec.
	headersLeft int
	partial     []byte
	// dropping is set while discarding the tail of a packet whose start was lost.
	dropping bool
}

type demuxer struct {
	pages   *pageReader
	streams map[uint32]*logicalStream
	order   []*logicalStream
	queue   []audio.Packet
	eof     error
	log     *zap.Logger
}

func (d *demuxer) Tracks() []audio.Track {
	tracks := make([]audio.Track, 0, len(d.order))
	for _, s := range d.order {
		tracks = append(tracks, audio.Track{ID: s.serial, Params: s.params})
	}
	return tracks
}

func (d *demuxer) NextPacket() (audio.Packet, error) {
	for len(d.queue) == 0 {
		if d.eof != nil {
			return audio.Packet{}, d.eof
		}

		p, err := d.pages.next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.eof = err
				continue
			}
			return audio.Packet{}, fmt.Errorf("%w", err)
		}
		d.feed(p)
	}

	pkt := d.queue[0]
	d.queue[0] = audio.Packet{}
	d.queue = d.queue[1:]
	return pkt, nil
}

func (d *demuxer) Close() error {
	d.queue = nil
	return nil
}

func (d *demuxer) headersComplete() bool {
	for _, s := range d.order {
		if s.headersLeft != 0 {
			return false
		}
	}
	return true
}

// feed splits a page into packets, joining packets that span pages.
func (d *demuxer) feed(p *page) {
	s := d.streams[p.serial]
	if s == nil {
		s = &logicalStream{serial: p.serial, headersLeft: -1}
		d.streams[p.serial] = s
		if p.bos() {
			d.order = append(d.order, s)
		}
	}

	switch {
	case p.continued() && s.partial == nil:
		s.dropping = true
	case !p.continued() && s.partial != nil:
		d.log.Debug("dropping unfinished ogg packet", zap.Uint32("serial", s.serial), zap.Int("bytes", len(s.partial)))
		s.partial = nil
		s.dropping = false
	}

	off := 0
	for _, l := range p.lacing {
		seg := p.body[off : off+int(l)]
		off += int(l)

		if !s.dropping {
			s.partial = append(s.partial, seg...)
		}
		if l < 255 {
			if !s.dropping {
				data := s.partial
				if data == nil {
					data = []byte{}
				}
				d.emit(s, data)
			}
			s.partial = nil
			s.dropping = false
		}
	}
}

func (d *demuxer) emit(s *logicalStream, data []byte) {
	if s.headersLeft < 0 {
		s.params, s.headersLeft = identify(data)
		d.log.Debug("ogg logical stream",
			zap.Uint32("serial", s.serial),
			zap.String("codec", string(s.params.Codec)),
			zap.Int("sample_rate", s.params.SampleRate),
			zap.Int("channels", s.params.Channels),
		)
	}

	if s.headersLeft > 0 {
		s.params.ExtraData = append(s.params.ExtraData, data)
		s.headersLeft--
		return
	}

	d.queue = append(d.queue, audio.Packet{TrackID: s.serial, Data: data})
}

// identify reads the codec parameters from the first packet of a logical
// stream and returns how many header packets precede the audio, counting
// the first one.
func identify(first []byte) (audio.TrackParams, int) {
	switch {
	case bytes.HasPrefix(first, []byte("\x01vorbis")) && len(first) >= 16:
		return audio.TrackParams{
			Codec:      audio.CodecVorbis,
			Channels:   int(first[11]),
			SampleRate: int(binary.LittleEndian.Uint32(first[12:16])),
		}, 3

	case bytes.HasPrefix(first, []byte("OpusHead")) && len(first) >= 10:
		// Opus always decodes at 48 kHz whatever the input rate field says.
		return audio.TrackParams{
			Codec:      audio.CodecOpus,
			Channels:   int(first[9]),
			SampleRate: 48000,
		}, 2

	case bytes.HasPrefix(first, []byte("\x7fFLAC")) && len(first) >= 17+18:
		si := first[17:]
		params := audio.TrackParams{
			Codec:      audio.CodecFLAC,
			SampleRate: int(si[10])<<12 | int(si[11])<<4 | int(si[12])>>4,
			Channels:   int((si[12]>>1)&0x07) + 1,
			Frames:     int64(si[13]&0x0F)<<32 | int64(binary.BigEndian.Uint32(si[14:18])),
		}
		bits := int((si[12]&0x01)<<4|si[13]>>4) + 1
		params.SampleFormat = audio.SampleFormat{Encoding: audio.EncodingSigned, Width: (bits + 7) / 8, Bits: bits}
		return params, 1 + int(binary.BigEndian.Uint16(first[7:9]))
	}

	return audio.TrackParams{Codec: audio.CodecNull}, 1
}
