package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

const (
	BadgeKeyholder      = "keyholder"
	BadgeFoundingMember = "founding_member"
	BadgeEarly10k       = "early_10k"
)

// BadgeSet is an add-only set of badge tags, kept in grant order and stored as a JSON array.
// There is no Remove: a badge, once granted, stays.
type BadgeSet []string

// Add grants badge and reports whether it was new.
func (b *BadgeSet) Add(badge string) bool {
	if badge == "" || b.Has(badge) {
		return false
	}
	*b = append(*b, badge)
	return true
}

func (b BadgeSet) Has(badge string) bool {
	return slices.Contains(b, badge)
}

func (b *BadgeSet) Scan(value any) error {
	switch t := value.(type) {
	case nil:
		*b = BadgeSet{}
		return nil
	case string:
		return b.unmarshal([]byte(t))
	case []byte:
		return b.unmarshal(t)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (b *BadgeSet) unmarshal(data []byte) error {
	if len(data) == 0 {
		*b = BadgeSet{}
		return nil
	}
	return json.Unmarshal(data, (*[]string)(b))
}

func (b BadgeSet) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(b))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
