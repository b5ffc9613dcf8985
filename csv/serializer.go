// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package csv renders graph rows as header-less comma separated lines. Fields
// are quoted per RFC 4180 whenever they contain the delimiter, a quote, or a
// line break, so arbitrary titles and tag names survive a bulk load intact.
package csv

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Fielder is implemented by records whose scalar values can be looked up by
// field name.
type Fielder interface {
	Field(name string) (interface{}, error)
}

// Serializer renders a Fielder as one line using a declared, ordered list of
// field names.
type Serializer struct {
	Fields []string
}

// NewSerializer gets a Serializer for the given fields.
func NewSerializer(fields ...string) *Serializer {
	return &Serializer{Fields: fields}
}

// Line renders rec's declared fields in order.
func (s *Serializer) Line(rec Fielder) (string, error) {
	vals := make([]string, len(s.Fields))
	for i, name := range s.Fields {
		v, err := rec.Field(name)
		if err != nil {
			return "", errors.Wrapf(err, "getting field %d", i)
		}
		vals[i], err = Format(v)
		if err != nil {
			return "", errors.Wrapf(err, "formatting field '%s'", name)
		}
	}
	return JoinRow(vals)
}

// FormatRow renders explicit values as one line.
func FormatRow(vals ...interface{}) (string, error) {
	strs := make([]string, len(vals))
	for i, v := range vals {
		s, err := Format(v)
		if err != nil {
			return "", errors.Wrapf(err, "formatting value %d", i)
		}
		strs[i] = s
	}
	return JoinRow(strs)
}

// Format converts a single value to its textual form. Floats use the shortest
// decimal representation which round trips, and never use an exponent.
func Format(v interface{}) (string, error) {
	switch vt := v.(type) {
	case string:
		return vt, nil
	case []byte:
		return string(vt), nil
	case float64:
		return strconv.FormatFloat(vt, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(vt), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(vt), nil
	case int32:
		return strconv.FormatInt(int64(vt), 10), nil
	case int64:
		return strconv.FormatInt(vt, 10), nil
	case uint64:
		return strconv.FormatUint(vt, 10), nil
	default:
		return "", errors.Errorf("can't format %v of type %[1]T", v)
	}
}

// JoinRow quotes and joins already formatted fields.
func JoinRow(fields []string) (string, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(fields); err != nil {
		return "", errors.Wrap(err, "writing row")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flushing row")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
