package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes holds free-form instrument metadata stored as JSONB, for
// properties that vary by instrument type (string count, body wood,
// pickup layout and so on).
type Attributes map[string]any

// Value marshals the attribute map for storage.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("attributes: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the stored JSON document.
func (a *Attributes) Scan(value interface{}) error {
	if value == nil {
		*a = Attributes{}
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("attributes: unsupported scan type %T", value)
	}
	if raw == "" {
		*a = Attributes{}
		return nil
	}

	var decoded Attributes
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return fmt.Errorf("attributes: unmarshal: %w", err)
	}
	*a = decoded
	return nil
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
