package codec

import (
	"errors"
)

const (
	// maxCodeLetters bounds the length of any code we accept from the
	// outside world. 62^10 already exceeds the range of store ids.
	maxCodeLetters = 10

	encodedChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	ErrEmptyInput       = errors.New("empty input")
	ErrInvalidCharacter = errors.New("unexpected char")
	ErrInvalidLength    = errors.New("invalid length")
)

var digitValue = func() map[rune]int64 {
	m := make(map[rune]int64, len(encodedChars))
	for i, c := range encodedChars {
		m[c] = int64(i)
	}
	return m
}()

// Encode maps a store-assigned id to its short code. The mapping is a pure
// base-62 positional encoding over encodedChars, so unique ids always yield
// unique codes.
//
// id must be non-negative; the store never hands out negative ids.
func Encode(id int64) string {
	if id < 0 {
		panic("codec: negative id")
	}
	if id == 0 {
		return encodedChars[:1]
	}
	var buf [maxCodeLetters + 1]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = encodedChars[id%62]
		id /= 62
	}
	return string(buf[i:])
}

// Decode is the inverse of Encode.
func Decode(code string) (int64, error) {
	if code == "" {
		return 0, ErrEmptyInput
	}
	var result int64
	for _, r := range code {
		v, ok := digitValue[r]
		if !ok {
			return 0, ErrInvalidCharacter
		}
		result = result*62 + v
	}
	return result, nil
}

// Validate reports whether a candidate code from the request path is worth a
// lookup at all. It is stricter than Decode: it also bounds the length.
func Validate(code string) error {
	if code == "" {
		return ErrEmptyInput
	}
	if len(code) > maxCodeLetters {
		return ErrInvalidLength
	}
	for _, r := range code {
		if _, ok := digitValue[r]; !ok {
			return ErrInvalidCharacter
		}
	}
	return nil
}

// EstimatedLength returns the code length needed to cover expectedCount ids,
// max(1, ceil(log62(expectedCount))). Computed with integer arithmetic so
// exact powers of 62 do not misround. Saturates at maxCodeLetters: counts
// beyond 62^10 exceed the id range we can hand out anyway.
func EstimatedLength(expectedCount int64) int {
	n := 1
	capacity := int64(62)
	for capacity < expectedCount && n < maxCodeLetters {
		capacity *= 62
		n++
	}
	return n
}

// Capacity returns how many distinct ids fit into codes of the given
// length. Lengths beyond maxCodeLetters saturate to that bound, since
// 62^11 already overflows int64.
func Capacity(length int) int64 {
	if length <= 0 {
		return 0
	}
	if length > maxCodeLetters {
		length = maxCodeLetters
	}
	result := int64(1)
	for i := 0; i < length; i++ {
		result *= 62
	}
	return result
}
