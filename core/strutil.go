package core

// utoa converts an unsigned integer to a string without using fmt
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	// Build string from right to left
	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

const hexDigits = "0123456789abcdef"

// hex32 formats v as 0x-prefixed, zero padded to 8 digits
func hex32(v uint32) string {
	var buf [10]byte
	buf[0], buf[1] = '0', 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return string(buf[:])
}

// hex16 formats v as 0x-prefixed, zero padded to 4 digits
func hex16(v uint16) string {
	s := hex32(uint32(v))
	return "0x" + s[6:]
}
