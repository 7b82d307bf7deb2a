package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies which member of the Value union is set.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindString
	KindInteger
	KindFloat
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// Value is a run argument or property value. It holds exactly one of a
// string, an integer, a float or a bool and serializes as the bare JSON scalar.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which member is set.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid is false for the zero Value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Str returns the string member and whether the value is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Integer returns the integer member and whether the value is an integer.
func (v Value) Integer() (int64, bool) { return v.i, v.kind == KindInteger }

// AsInt interprets the value as a count: integers as-is, integral floats,
// and strings holding a base-10 integer.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInteger:
		return v.i, nil
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), nil
		}
		return 0, fmt.Errorf("%v is not a whole number", v.f)
	case KindString:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v.s)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s value is not an integer", v.kind)
	}
}

// Text renders the value the way it appears in a .props file.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.Text()
}

// DeepCopy satisfies deepcopy.Interface so deep copies keep the union intact.
func (v Value) DeepCopy() interface{} {
	return v
}

// MarshalJSON writes the bare scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInteger:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
}

// UnmarshalJSON accepts a JSON string, number or boolean. Numbers without
// a fractional part or exponent decode as integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueOf converts a decoded JSON scalar into a Value.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q", x.String())
		}
		return Float(f), nil
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x)), nil
		}
		return Float(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case nil:
		return Value{}, fmt.Errorf("null is not a valid value")
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// ParseScalar interprets free-form input: base-10 integers become integer
// values, everything else stays a string.
func ParseScalar(s string) Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	return String(s)
}
