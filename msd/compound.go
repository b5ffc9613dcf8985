package msd

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// kind is the class of a compound member as far as decoding cares.
type kind int

const (
	kindOther kind = iota
	kindString
	kindFloat
	kindInt
)

func (k kind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindFloat:
		return "float"
	case kindInt:
		return "int"
	}
	return "other"
}

type member struct {
	offset int
	size   int
	kind   kind
}

// compound is the raw content of a compound (table) dataset along with the
// layout of its members. Rows are size bytes wide. Numbers are little endian,
// which is how every Million Song Dataset file is written.
type compound struct {
	name    string
	size    int
	rows    int
	buf     []byte
	members map[string]member
}

func (c *compound) lookup(row int, name string, want kind) ([]byte, error) {
	m, ok := c.members[name]
	if !ok {
		return nil, &missingError{table: c.name, member: name}
	}
	if m.kind != want {
		return nil, errors.Errorf("%s.%s is %v, not %v", c.name, name, m.kind, want)
	}
	if row < 0 || row >= c.rows {
		return nil, errors.Errorf("%s has %d rows, can't read row %d", c.name, c.rows, row)
	}
	start := row*c.size + m.offset
	if start+m.size > len(c.buf) {
		return nil, errors.Errorf("%s.%s row %d overruns buffer", c.name, name, row)
	}
	return c.buf[start : start+m.size], nil
}

// String reads a fixed length, NUL padded string member.
func (c *compound) String(row int, name string) (string, error) {
	b, err := c.lookup(row, name, kindString)
	if err != nil {
		return "", err
	}
	return cString(b), nil
}

// Float reads a 4 or 8 byte IEEE float member.
func (c *compound) Float(row int, name string) (float64, error) {
	b, err := c.lookup(row, name, kindFloat)
	if err != nil {
		return 0, err
	}
	return decodeFloat(b)
}

// Int reads a 1, 2, 4 or 8 byte signed integer member.
func (c *compound) Int(row int, name string) (int64, error) {
	b, err := c.lookup(row, name, kindInt)
	if err != nil {
		return 0, err
	}
	switch len(b) {
	case 1:
		return int64(int8(b[0])), nil
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	case 8:
		return int64(binary.LittleEndian.Uint64(b)), nil
	}
	return 0, errors.Errorf("unsupported integer width %d", len(b))
}

type missingError struct {
	table  string
	member string
}

func (e *missingError) Error() string {
	return "no member '" + e.member + "' in " + e.table
}

func decodeFloat(b []byte) (float64, error) {
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	}
	return 0, errors.Errorf("unsupported float width %d", len(b))
}

// cString trims a fixed length string at its first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// splitStrings cuts a buffer of fixed width strings into n strings.
func splitStrings(buf []byte, width, n int) ([]string, error) {
	if width*n > len(buf) {
		return nil, errors.Errorf("%d strings of width %d overrun %d byte buffer", n, width, len(buf))
	}
	out := make([]string, n)
	for i := range out {
		out[i] = cString(buf[i*width : (i+1)*width])
	}
	return out, nil
}

// splitFloats cuts a buffer of fixed width floats into n floats.
func splitFloats(buf []byte, width, n int) ([]float64, error) {
	if width*n > len(buf) {
		return nil, errors.Errorf("%d floats of width %d overrun %d byte buffer", n, width, len(buf))
	}
	out := make([]float64, n)
	for i := range out {
		f, err := decodeFloat(buf[i*width : (i+1)*width])
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
