package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemOption is a selectable size or extra on a menu item. PriceDelta is the
// additive price change in whole rupees and may be zero.
type ItemOption struct {
	Name       string `json:"name"`
	PriceDelta int    `json:"price_delta"`
}

// Value implements driver.Valuer for the jsonb column.
func (o ItemOption) Value() (driver.Value, error) {
	return json.Marshal(o)
}

// Scan implements sql.Scanner for the jsonb column.
func (o *ItemOption) Scan(value interface{}) error {
	return scanJSON(value, o)
}

// ItemOptions is stored as a jsonb column on menu items and order line items.
type ItemOptions []ItemOption

// Value implements driver.Valuer for the jsonb column.
func (o ItemOptions) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

// Scan implements sql.Scanner for the jsonb column.
func (o *ItemOptions) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	return scanJSON(value, o)
}

func scanJSON(value interface{}, target any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// Find returns the option with the given name, matched exactly.
func (o ItemOptions) Find(name string) (ItemOption, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt, true
		}
	}
	return ItemOption{}, false
}
