package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList is an ordered list of entity ids stored as a JSON array column.
type IDList []string

func (l *IDList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = IDList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("IDList: unsupported source %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*l = IDList{}
		return nil
	}
	items := []string{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("IDList: %w", err)
	}
	*l = items
	return nil
}

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l IDList) Contains(id string) bool {
	for _, item := range l {
		if item == id {
			return true
		}
	}
	return false
}

// JSONDocument is an opaque JSON payload stored in a jsonb column.
type JSONDocument json.RawMessage

func (d *JSONDocument) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append((*d)[0:0], v...)
	case string:
		*d = JSONDocument(v)
	default:
		return fmt.Errorf("JSONDocument: unsupported source %T", src)
	}
	return nil
}

func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return []byte(d), nil
}

func (d *JSONDocument) UnmarshalJSON(data []byte) error {
	*d = append((*d)[0:0], data...)
	return nil
}

// IsObject reports whether the document is a JSON object.
func (d JSONDocument) IsObject() bool {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}
