package libzmx

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind distinguishes numeric from text parameter values.
type ValueKind int

const (
	Number ValueKind = iota
	Text
)

func (k ValueKind) String() string {
	if k == Text {
		return "text"
	}
	return "number"
}

// Value is a parameter value: either a number or a text string. The zero
// Value is the number 0.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// Num makes a numeric value.
func Num(v float64) Value { return Value{kind: Number, num: v} }

// Str makes a text value.
func Str(s string) Value { return Value{kind: Text, text: s} }

func (v Value) Kind() ValueKind { return v.kind }

// Number returns the numeric payload. Zero for text values.
func (v Value) Number() float64 { return v.num }

// Text returns the text payload. Empty for numeric values.
func (v Value) Text() string { return v.text }

func (v Value) String() string {
	if v.kind == Text {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings, so
// prescription snapshots stay readable.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == Text {
		return json.Marshal(v.text)
	}
	return json.Marshal(v.num)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Num(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value must be a number or a string: %w", err)
	}
	*v = Str(s)
	return nil
}
