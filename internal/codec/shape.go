package codec

import (
	"encoding/json"
	"reflect"
	"strings"
)

// ShapeKind tags the wire variants a list-valued field arrives in.
type ShapeKind int

const (
	ShapeMissing ShapeKind = iota
	ShapeText
	ShapeList
	ShapeOther
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeMissing:
		return "missing"
	case ShapeText:
		return "text"
	case ShapeList:
		return "list"
	}
	return "other"
}

// ListShape is the classified wire value of a list field. Rows written by
// this codec carry JSON text; rows written by other paths may already hold a
// native array.
type ListShape struct {
	Kind  ShapeKind
	Text  string
	Value any
}

// ShapeOf classifies a raw wire value.
func ShapeOf(v any, present bool) ListShape {
	if !present || v == nil {
		return ListShape{Kind: ShapeMissing}
	}
	if s, ok := v.(string); ok {
		return ListShape{Kind: ShapeText, Text: s}
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return ListShape{Kind: ShapeList, Value: v}
	}
	return ListShape{Kind: ShapeOther, Value: v}
}

// Items returns the list elements as plain JSON values. It never fails and
// never returns nil: malformed, missing and non-list input all yield an empty
// list.
func (s ListShape) Items() []any {
	var raw []byte
	switch s.Kind {
	case ShapeText:
		if strings.TrimSpace(s.Text) == "" {
			return []any{}
		}
		raw = []byte(s.Text)
	case ShapeList:
		// normalizes driver array types (bson primitive.A and friends)
		b, err := json.Marshal(s.Value)
		if err != nil {
			return []any{}
		}
		raw = b
	default:
		return []any{}
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []any{}
	}
	return items
}
