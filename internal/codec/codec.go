// Package codec converts typed entities to and from flat store records.
//
// Structured fields cross the storage boundary as text: lists are JSON
// arrays serialized to a string and instants are ISO-8601 UTC strings.
// Encode walks json-tagged struct fields; Decode hands scalar fields to
// mapstructure and decodes each list field on its own.
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("codec")

// InstantLayout is the wire form of time.Time fields (millisecond precision, UTC).
const InstantLayout = "2006-01-02T15:04:05.000Z07:00"

// accepted on decode, most specific first
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var timeType = reflect.TypeOf(time.Time{})

type field struct {
	name      string
	omitEmpty bool
	index     []int
	typ       reflect.Type
}

// fields lists the json-tagged fields of t, flattening untagged embedded structs.
func fields(t reflect.Type) []field {
	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			for _, sub := range fields(sf.Type) {
				sub.index = append([]int{i}, sub.index...)
				out = append(out, sub)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		out = append(out, field{
			name:      name,
			omitEmpty: strings.Contains(opts, "omitempty"),
			index:     []int{i},
			typ:       sf.Type,
		})
	}
	return out
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("codec: nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("codec: %T is not a struct", v)
	}
	return rv, nil
}

// Encode builds the wire record for v. Store-assigned fields (id,
// created_at) are never written. Nil pointer fields are left out, so a patch
// struct of pointers encodes only the fields it sets.
func Encode(v any) (store.Record, error) {
	rv, err := structValue(v)
	if err != nil {
		return nil, err
	}
	rec := store.Record{}
	for _, f := range fields(rv.Type()) {
		if f.name == store.FieldID || f.name == store.FieldCreatedAt {
			continue
		}
		fv := rv.FieldByIndex(f.index)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		} else if f.omitEmpty && fv.IsZero() {
			continue
		}
		wire, err := encodeValue(fv)
		if err != nil {
			return nil, fmt.Errorf("codec: field %s: %w", f.name, err)
		}
		rec[f.name] = wire
	}
	return rec, nil
}

func encodeValue(v reflect.Value) (any, error) {
	if v.Type() == timeType {
		return v.Interface().(time.Time).UTC().Format(InstantLayout), nil
	}
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return "[]", nil
		}
		fallthrough
	case reflect.Array, reflect.Map, reflect.Struct:
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return nil, fmt.Errorf("unsupported kind %s", v.Kind())
}

// Decode fills out (a pointer to struct) from rec. List fields go through the
// ListShape step and are decoded one by one; a list whose elements do not fit
// the field type decodes to an empty slice.
func Decode(rec store.Record, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("codec: decode target %T is not a struct pointer", out)
	}
	in := rec.Clone()
	fs := fields(rv.Elem().Type())
	for _, f := range fs {
		if isList(f.typ) {
			delete(in, f.name)
		}
	}

	if err := decodeInto(in, out); err != nil {
		return fmt.Errorf("codec: %w", err)
	}

	elem := rv.Elem()
	for _, f := range fs {
		fv := elem.FieldByIndex(f.index)
		if isList(f.typ) {
			raw, ok := rec[f.name]
			decodeList(f, ShapeOf(raw, ok).Items(), fv)
			continue
		}
		if fv.Kind() == reflect.Slice && fv.IsNil() {
			fv.Set(reflect.MakeSlice(fv.Type(), 0, 0))
		}
	}
	return nil
}

func decodeInto(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(instantHook),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// decodeList sets fv (a slice or pointer to slice) from items.
func decodeList(f field, items []any, fv reflect.Value) {
	target := reflect.New(f.typ)
	if err := decodeInto(items, target.Interface()); err != nil {
		log.Warnf("field %s: %v; using an empty list", f.name, err)
		target = reflect.New(f.typ)
	}
	v := target.Elem()
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		if v.Elem().IsNil() {
			v.Elem().Set(reflect.MakeSlice(v.Type().Elem(), 0, 0))
		}
	} else if v.IsNil() {
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	}
	fv.Set(v)
}

func isList(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8
}

func instantHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseInstant(reflect.ValueOf(data).String())
}

// ParseInstant parses a wire date. The empty string is the zero time.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("codec: bad instant %q", s)
}
