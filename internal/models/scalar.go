package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Scalar is a descriptive value stored either as a JSON string or a JSON
// number. The original kind is kept so re-encoding never changes the
// persisted shape.
type Scalar struct {
	text    string
	numeric bool
}

// StringScalar builds a string-valued Scalar.
func StringScalar(v string) Scalar { return Scalar{text: v} }

// NumberScalar builds a number-valued Scalar.
func NumberScalar(v int) Scalar { return Scalar{text: strconv.Itoa(v), numeric: true} }

// String returns the textual form.
func (s Scalar) String() string { return s.text }

// IsNumber reports whether the value is encoded as a JSON number.
func (s Scalar) IsNumber() bool { return s.numeric }

// IsZero reports whether no value is set.
func (s Scalar) IsZero() bool { return s.text == "" && !s.numeric }

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Scalar{}
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Scalar{text: v}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("scalar must be a string or number: %w", err)
		}
		*s = Scalar{text: n.String(), numeric: true}
	}
	return nil
}

// text is a free-text field that also accepts JSON numbers and booleans, so a
// record written by a looser client still decodes.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = text(v)
	case bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")):
		*t = text(data)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("text field cannot hold %s", kindOf(data))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("text must be a string, number or boolean: %w", err)
		}
		*t = text(n.String())
	}
	return nil
}

func kindOf(data []byte) string {
	if data[0] == '{' {
		return "an object"
	}
	return "an array"
}

// sameJSON reports whether a and b encode the same value byte for byte once
// insignificant whitespace is removed.
func sameJSON(a, b json.RawMessage) bool {
	if a == nil || b == nil {
		return false
	}
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// sameText reports whether a and b carry the same value when strings, numbers,
// booleans and null are compared by their text. Objects and arrays must match
// exactly.
func sameText(a, b json.RawMessage) bool {
	ta, scalarA := textOf(a)
	tb, scalarB := textOf(b)
	return scalarA == scalarB && ta == tb
}

func textOf(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw), false
		}
		return buf.String(), false
	}
	var t text
	if err := t.UnmarshalJSON(raw); err != nil {
		return string(raw), true
	}
	return string(t), true
}
