package hierarchy

import (
	"strconv"
	"unicode/utf16"
)

// HashKey is the 32-bit polynomial rolling hash h = h*31 + c over the UTF-16 code units of s,
// with two's-complement wraparound, folded to non-negative by taking the absolute value in
// 64 bits. The fold maps math.MinInt32 to 2147483648, so the result needs a uint32.
//
// The scheme is fixed: changing it reshuffles every previously seeded assignment.
func HashKey(s string) uint32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return uint32(v)
}

// Pick maps key onto [0, n). It returns -1 when n is not positive.
func Pick(key string, n int) int {
	if n <= 0 {
		return -1
	}
	return int(HashKey(key) % uint32(n))
}

// EntityKey builds the stable hash input for a record: the natural id, else the secondary id,
// else the positional index. The result is never empty.
func EntityKey(primary, secondary string, index int) string {
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return strconv.Itoa(index)
}
