package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Field is one key of a JSON object with its value kept as raw JSON.
type Field struct {
	Key   string
	Value string
}

// Record is a JSON object that remembers the order its keys arrived in.
type Record []Field

func ParseRecords(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("expected JSON array, got %s", parsed.Type)
	}

	records := []Record{}
	var err error

	parsed.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("expected JSON object at index %d, got %s", key.Int(), value.Type)
			return false
		}

		records = append(records, fromResult(value))
		return true
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func ParseRecord(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("expected JSON object, got %s", parsed.Type)
	}

	return fromResult(parsed), nil
}

// MarshalRecords encodes records as one compact JSON array.
func MarshalRecords(records []Record) ([]byte, error) {
	out := make([]byte, 0, 2+len(records)*256)
	out = append(out, '[')

	for i, r := range records {
		if i > 0 {
			out = append(out, ',')
		}

		var err error
		out, err = r.appendJSON(out)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
	}

	return append(out, ']'), nil
}

func fromResult(obj gjson.Result) Record {
	r := Record{}

	obj.ForEach(func(key, value gjson.Result) bool {
		r = append(r, Field{Key: key.String(), Value: value.Raw})
		return true
	})

	return r
}

func (r Record) Get(key string) (gjson.Result, bool) {
	for _, f := range r {
		if f.Key == key {
			return gjson.Parse(f.Value), true
		}
	}

	return gjson.Result{}, false
}

func (r Record) Has(key string) bool {
	return slices.ContainsFunc(r, func(f Field) bool { return f.Key == key })
}

// Int returns the value of key when it is an integral JSON number.
func (r Record) Int(key string) (int64, bool) {
	v, ok := r.Get(key)
	if !ok || v.Type != gjson.Number {
		return 0, false
	}

	if v.Num != math.Trunc(v.Num) {
		return 0, false
	}

	return v.Int(), true
}

func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, f := range r {
		keys = append(keys, f.Key)
	}

	return keys
}

// Without returns a copy of r minus the given keys.
func (r Record) Without(keys ...string) Record {
	out := make(Record, 0, len(r))

	for _, f := range r {
		if slices.Contains(keys, f.Key) {
			continue
		}
		out = append(out, f)
	}

	return out
}

// Rename returns a copy of r with key from replaced by to in place.
func (r Record) Rename(from, to string) Record {
	out := make(Record, len(r))
	copy(out, r)

	for i := range out {
		if out[i].Key == from {
			out[i].Key = to
		}
	}

	return out
}

// With returns a copy of r where key holds raw, replacing an existing
// value in place or appending the key at the end.
func (r Record) With(key, raw string) Record {
	out := make(Record, len(r), len(r)+1)
	copy(out, r)

	for i := range out {
		if out[i].Key == key {
			out[i].Value = raw
			return out
		}
	}

	return append(out, Field{Key: key, Value: raw})
}

// MarshalJSON encodes r as a compact object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.appendJSON(nil)
}

func (r Record) appendJSON(dst []byte) ([]byte, error) {
	dst = append(dst, '{')

	for i, f := range r {
		if !gjson.Valid(f.Value) {
			return nil, fmt.Errorf("field %q: invalid JSON value", f.Key)
		}

		if i > 0 {
			dst = append(dst, ',')
		}
		dst = gjson.AppendJSONString(dst, f.Key)
		dst = append(dst, ':')
		dst = append(dst, pretty.Ugly([]byte(f.Value))...)
	}

	return append(dst, '}'), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRecord(data)
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}

// Value decodes r into plain Go values; key order is lost.
func (r Record) Value() map[string]any {
	out := make(map[string]any, len(r))
	for _, f := range r {
		out[f.Key] = gjson.Parse(f.Value).Value()
	}

	return out
}
