// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04

	pageHeaderSize = 27
)

var capturePattern = []byte("OggS")

type page struct {
	flags   byte
	granule int64
	serial  uint32
	seq     uint32
	lacing  []byte
	body    []byte
}

func (p *page) continued() bool { return p.flags&flagContinued != 0 }
func (p *page) bos() bool       { return p.flags&flagBOS != 0 }

// crcTable is the Ogg CRC-32: polynomial 0x04c11db7, MSB first, no reflection.
var crcTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

func crcUpdate(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

type pageReader struct {
	br  *bufio.Reader
	log *zap.Logger

	// skippedBytes counts garbage discarded while looking for a capture pattern
	skippedBytes int64
	badPages     int
}

func newPageReader(r io.Reader, log *zap.Logger) *pageReader {
	return &pageReader{br: bufio.NewReaderSize(r, 64*1024), log: log}
}

func (r *pageReader) sync() error {
	for {
		b, err := r.br.Peek(len(capturePattern))
		if err != nil {
			return err
		}
		if bytes.Equal(b, capturePattern) {
			return nil
		}
		if _, err := r.br.Discard(1); err != nil {
			return err
		}
		r.skippedBytes++
	}
}

// next returns the next page with a valid checksum. A capture pattern that
// does not start a valid page is passed over one byte at a time, so a false
// match never swallows the real page behind it. It returns io.EOF at a page
// boundary and io.ErrUnexpectedEOF inside a page.
func (r *pageReader) next() (*page, error) {
	for {
		if err := r.sync(); err != nil {
			return nil, err
		}

		raw, err := r.peekPage()
		if err != nil {
			if err == io.EOF && r.captureAhead() {
				r.skipFalseCapture()
				continue
			}
			return nil, truncated(err)
		}

		hdr := raw[:pageHeaderSize]
		if hdr[4] != 0 {
			r.log.Debug("skipping ogg page with unknown version", zap.Uint8("version", hdr[4]))
			r.skipFalseCapture()
			continue
		}

		want := binary.LittleEndian.Uint32(hdr[22:26])
		crc := crcUpdate(0, hdr[:22])
		crc = crcUpdate(crc, []byte{0, 0, 0, 0})
		crc = crcUpdate(crc, raw[26:])
		if crc != want {
			r.badPages++
			r.log.Warn("skipping ogg page with bad checksum",
				zap.Uint32("serial", binary.LittleEndian.Uint32(hdr[14:18])),
				zap.Uint32("sequence", binary.LittleEndian.Uint32(hdr[18:22])),
				zap.String("crc", fmt.Sprintf("%08x != %08x", crc, want)),
			)
			r.skipFalseCapture()
			continue
		}

		segments := pageHeaderSize + int(hdr[26])
		p := &page{
			flags:   hdr[5],
			granule: int64(binary.LittleEndian.Uint64(hdr[6:14])),
			serial:  binary.LittleEndian.Uint32(hdr[14:18]),
			seq:     binary.LittleEndian.Uint32(hdr[18:22]),
			lacing:  bytes.Clone(raw[pageHeaderSize:segments]),
			body:    bytes.Clone(raw[segments:]),
		}
		if _, err := r.br.Discard(len(raw)); err != nil {
			return nil, err
		}
		return p, nil
	}
}

// peekPage returns the page at the read position without consuming it.
// The largest possible page (27 + 255 + 255*255 bytes) fits in the buffer.
func (r *pageReader) peekPage() ([]byte, error) {
	hdr, err := r.br.Peek(pageHeaderSize)
	if err != nil {
		return nil, err
	}
	n := pageHeaderSize + int(hdr[26])
	b, err := r.br.Peek(n)
	if err != nil {
		return nil, err
	}
	for _, l := range b[pageHeaderSize:] {
		n += int(l)
	}
	return r.br.Peek(n)
}

// captureAhead reports whether another capture pattern follows the current
// one in what is left of the input. It is only meaningful once a peek has
// hit EOF, when the remainder is all buffered.
func (r *pageReader) captureAhead() bool {
	rest, _ := r.br.Peek(r.br.Buffered())
	return len(rest) > 1 && bytes.Contains(rest[1:], capturePattern)
}

func (r *pageReader) skipFalseCapture() {
	// Peek already proved the byte is buffered.
	_, _ = r.br.Discard(1)
	r.skippedBytes++
}

func truncated(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
