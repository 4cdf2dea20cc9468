package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/legends/internal/ir"
)

// marshalBindings converts bindings to canonical JSON TEXT for storage.
func marshalBindings(b ir.Bindings) (string, error) {
	if b == nil {
		b = ir.Bindings{}
	}
	data, err := ir.MarshalCanonical(b)
	if err != nil {
		return "", fmt.Errorf("marshal bindings: %w", err)
	}
	return string(data), nil
}

// marshalValue converts a value to canonical JSON TEXT, or NULL for an
// evaluation that failed.
func marshalValue(v ir.Value) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal value: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalBindings(data string) (ir.Bindings, error) {
	if data == "" || data == "{}" {
		return ir.Bindings{}, nil
	}
	return ir.UnmarshalBindings([]byte(data))
}

func unmarshalValue(kind string, data sql.NullString) (ir.Kind, ir.Value, error) {
	if kind == "" {
		return ir.KindInvalid, nil, nil
	}
	k, err := ir.ParseKind(kind)
	if err != nil {
		return ir.KindInvalid, nil, fmt.Errorf("unmarshal value: %w", err)
	}
	if !data.Valid {
		return k, nil, nil
	}
	v, err := ir.UnmarshalValue(k, []byte(data.String))
	if err != nil {
		return k, nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return k, v, nil
}
