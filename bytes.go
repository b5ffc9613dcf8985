package songgraph

import (
	"strconv"
	"strings"
)

// Bytes is a byte count which prints in a short human-readable form such as
// 12.5K or 3M. Units are powers of 1024.
type Bytes uint64

var byteUnits = []struct {
	size   uint64
	suffix string
}{
	{1 << 40, "T"},
	{1 << 30, "G"},
	{1 << 20, "M"},
	{1 << 10, "K"},
}

// String picks the largest unit which keeps the value at or above 1, with one
// decimal place when needed.
func (b Bytes) String() string {
	if b == 0 {
		return "0"
	}
	for _, u := range byteUnits {
		if uint64(b) >= u.size {
			v := strconv.FormatFloat(float64(b)/float64(u.size), 'f', 1, 64)
			return strings.TrimSuffix(v, ".0") + u.suffix
		}
	}
	return strconv.FormatUint(uint64(b), 10) + "B"
}
