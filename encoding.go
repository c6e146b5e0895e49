// Package snowflake - encoding.go provides the lookup-table base
// conversions behind ID's Base32/Base58/Base62/Hex methods. Each pair is
// a shift-or-divide encode loop plus a 256-byte decode table built once
// at init, rather than strconv's generic base support, so that invalid
// characters and overflow are caught explicitly instead of relying on
// strconv's own error variants.
package snowflake

import (
	"errors"
)

// Max*Len bound the longest string decodeBaseNN will accept for a 64-bit
// value, so a caller-supplied string can't force an unbounded scan.
const (
	MaxBase32Len = 13 // ceil(64/5)
	MaxBase58Len = 11 // ceil(log58(2^64))
	MaxBase62Len = 11 // ceil(log62(2^64))
	MaxHexLen    = 16 // ceil(64/4)
)

var (
	ErrInvalidBase2    = errors.New("invalid base2 encoding")
	ErrInvalidBase32   = errors.New("invalid base32 encoding")
	ErrInvalidBase36   = errors.New("invalid base36 encoding")
	ErrInvalidBase58   = errors.New("invalid base58 encoding")
	ErrInvalidBase62   = errors.New("invalid base62 encoding")
	ErrInvalidBase64   = errors.New("invalid base64 encoding")
	ErrInvalidHex      = errors.New("invalid hexadecimal encoding")
	ErrStringTooLong   = errors.New("encoded string exceeds maximum length")
	ErrIntegerOverflow = errors.New("decoded value would overflow int64")
)

// encodeBase32Map is the z-base-32 alphabet: lowercase only (decoding
// does not accept uppercase), omitting 0, l, v and 2.
const encodeBase32Map = "ybndrfg8ejkmcpqxot1uwisza345h769"

// encodeBase58Map is the Bitcoin character set (no 0, O, I or l) in the
// Flickr ordering, lowercase before uppercase, carried here for ID.Base58
// parity with systems that already use base58 for externally-facing
// identifiers.
const encodeBase58Map = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// encodeBase62Map is plain alphanumeric, safe to embed in a URL path
// segment or filename without escaping.
const encodeBase62Map = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const encodeHexMap = "0123456789abcdef"

// decode*Map entries default to 0xFF (not a valid digit); init fills in
// the real values from the corresponding encode map. Read-only after
// init, so every decode call can index them without locking.
var (
	decodeBase32Map [256]byte
	decodeBase58Map [256]byte
	decodeBase62Map [256]byte
	decodeHexMap    [256]byte
)

func init() {
	for i := 0; i < 256; i++ {
		decodeBase32Map[i] = 0xFF
		decodeBase58Map[i] = 0xFF
		decodeBase62Map[i] = 0xFF
		decodeHexMap[i] = 0xFF
	}

	for i := 0; i < len(encodeBase32Map); i++ {
		decodeBase32Map[encodeBase32Map[i]] = byte(i)
	}
	for i := 0; i < len(encodeBase58Map); i++ {
		decodeBase58Map[encodeBase58Map[i]] = byte(i)
	}
	for i := 0; i < len(encodeBase62Map); i++ {
		decodeBase62Map[encodeBase62Map[i]] = byte(i)
	}
	for i := 0; i < len(encodeHexMap); i++ {
		decodeHexMap[encodeHexMap[i]] = byte(i)
		if encodeHexMap[i] >= 'a' && encodeHexMap[i] <= 'f' {
			decodeHexMap[encodeHexMap[i]-32] = byte(i) // also accept uppercase
		}
	}
}

// reverseInPlace flips the byte order of a digit buffer built
// least-significant-digit-first, the shared last step of every encodeBaseNN
// below.
func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// encodeBase32 masks off 5 bits at a time rather than dividing by 32,
// since 32 is a power of two.
func encodeBase32(id int64) string {
	if id <= 0 {
		return string(encodeBase32Map[0])
	}
	if id < 32 {
		return string(encodeBase32Map[id])
	}

	b := make([]byte, 0, MaxBase32Len)
	for id >= 32 {
		b = append(b, encodeBase32Map[id&0x1F])
		id >>= 5
	}
	b = append(b, encodeBase32Map[id])
	reverseInPlace(b)
	return string(b)
}

func decodeBase32(s string) (int64, error) {
	if len(s) > MaxBase32Len {
		return -1, ErrStringTooLong
	}

	var id int64
	const maxSafeValue = (1<<63 - 1) >> 5
	for i := 0; i < len(s); i++ {
		v := decodeBase32Map[s[i]]
		if v == 0xFF {
			return -1, ErrInvalidBase32
		}
		if id > maxSafeValue {
			return -1, ErrIntegerOverflow
		}
		id = (id << 5) + int64(v)
	}
	return id, nil
}

// encodeBase58 and encodeBase62 fall back to modulo/divide: 58 and 62
// aren't powers of two, so there's no bit-masking shortcut.
func encodeBase58(id int64) string {
	if id <= 0 {
		return string(encodeBase58Map[0])
	}
	if id < 58 {
		return string(encodeBase58Map[id])
	}

	b := make([]byte, 0, MaxBase58Len)
	for id >= 58 {
		b = append(b, encodeBase58Map[id%58])
		id /= 58
	}
	b = append(b, encodeBase58Map[id])
	reverseInPlace(b)
	return string(b)
}

func decodeBase58(s string) (int64, error) {
	if len(s) > MaxBase58Len {
		return -1, ErrStringTooLong
	}

	var id int64
	const maxSafeValue = (1<<63 - 1) / 58
	const maxSafeRemainder = (1<<63 - 1) % 58
	for i := 0; i < len(s); i++ {
		v := decodeBase58Map[s[i]]
		if v == 0xFF {
			return -1, ErrInvalidBase58
		}
		if id > maxSafeValue || (id == maxSafeValue && int64(v) > maxSafeRemainder) {
			return -1, ErrIntegerOverflow
		}
		id = id*58 + int64(v)
	}
	return id, nil
}

func encodeBase62(id int64) string {
	if id <= 0 {
		return string(encodeBase62Map[0])
	}
	if id < 62 {
		return string(encodeBase62Map[id])
	}

	b := make([]byte, 0, MaxBase62Len)
	for id >= 62 {
		b = append(b, encodeBase62Map[id%62])
		id /= 62
	}
	b = append(b, encodeBase62Map[id])
	reverseInPlace(b)
	return string(b)
}

func decodeBase62(s string) (int64, error) {
	if len(s) > MaxBase62Len {
		return -1, ErrStringTooLong
	}

	var id int64
	const maxSafeValue = (1<<63 - 1) / 62
	const maxSafeRemainder = (1<<63 - 1) % 62
	for i := 0; i < len(s); i++ {
		v := decodeBase62Map[s[i]]
		if v == 0xFF {
			return -1, ErrInvalidBase62
		}
		if id > maxSafeValue || (id == maxSafeValue && int64(v) > maxSafeRemainder) {
			return -1, ErrIntegerOverflow
		}
		id = id*62 + int64(v)
	}
	return id, nil
}

// encodeHex masks off 4 bits at a time, the same bit-shift shortcut as
// encodeBase32.
func encodeHex(id int64) string {
	if id == 0 {
		return "0"
	}

	b := make([]byte, 0, MaxHexLen)
	for id > 0 {
		b = append(b, encodeHexMap[id&0x0F])
		id >>= 4
	}
	reverseInPlace(b)
	return string(b)
}

func decodeHex(s string) (int64, error) {
	if len(s) > MaxHexLen {
		return -1, ErrStringTooLong
	}

	var id int64
	const maxSafeValue = (1<<63 - 1) >> 4
	for i := 0; i < len(s); i++ {
		v := decodeHexMap[s[i]]
		if v == 0xFF {
			return -1, ErrInvalidHex
		}
		if id > maxSafeValue {
			return -1, ErrIntegerOverflow
		}
		id = (id << 4) + int64(v)
	}
	return id, nil
}
