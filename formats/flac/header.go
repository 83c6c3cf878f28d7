// SPDX-License-Identifier: EPL-2.0

package flac

// headerBits maps the 3-bit sample size code. 0 defers to STREAMINFO, -1 is reserved.
var headerBits = [8]int{0, 8, 12, -1, 16, 20, 24, -1}

var crc8Table = func() (t [256]byte) {
	for i := range t {
		c := byte(i)
		for range 8 {
			if c&0x80 != 0 {
				c = c<<1 ^ 0x07
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}()

func crc8(b []byte) (c byte) {
	for _, x := range b {
		c = crc8Table[c^x]
	}
	return c
}

// headerLen returns the length of the frame header at the start of b,
// CRC-8 included, or 0 when b does not start with a header that fits a
// stream of the given channel count and sample size.
func headerLen(b []byte, channels, bits int) int {
	if len(b) < 6 || b[0] != 0xFF || b[1]&0xFE != 0xF8 {
		return 0
	}

	blockCode, rateCode := b[2]>>4, b[2]&0x0F
	chanCode, bitsCode := b[3]>>4, (b[3]>>1)&0x07
	if blockCode == 0 || rateCode == 0x0F || chanCode > 10 || b[3]&0x01 != 0 {
		return 0
	}
	if chanCount(chanCode) != channels {
		return 0
	}
	if hb := headerBits[bitsCode]; hb < 0 || (hb != 0 && hb != bits) {
		return 0
	}

	n := codedNumberLen(b[4:])
	if n == 0 {
		return 0
	}
	n += 4
	switch blockCode {
	case 6:
		n++
	case 7:
		n += 2
	}
	switch rateCode {
	case 12:
		n++
	case 13, 14:
		n += 2
	}

	if len(b) <= n || crc8(b[:n]) != b[n] {
		return 0
	}
	return n + 1
}

func chanCount(code byte) int {
	if code < 8 {
		return int(code) + 1
	}
	return 2
}

// codedNumberLen returns the length of the UTF-8 style frame or sample number.
func codedNumberLen(b []byte) int {
	if len(b) == 0 {
		return 0
	}

	var n int
	switch c := b[0]; {
	case c&0x80 == 0:
		return 1
	case c&0xE0 == 0xC0:
		n = 2
	case c&0xF0 == 0xE0:
		n = 3
	case c&0xF8 == 0xF0:
		n = 4
	case c&0xFC == 0xF8:
		n = 5
	case c&0xFE == 0xFC:
		n = 6
	case c == 0xFE:
		n = 7
	default:
		return 0
	}

	if len(b) < n {
		return 0
	}
	for _, c := range b[1:n] {
		if c&0xC0 != 0x80 {
			return 0
		}
	}
	return n
}
