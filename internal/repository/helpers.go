package repository

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// sqlTime stores a time as RFC 3339 text in UTC. The zero time is NULL.
type sqlTime struct {
	time.Time
}

func (t sqlTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(time.RFC3339), nil
}

func (t *sqlTime) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		t.Time = v
		return nil
	default:
		return fmt.Errorf("cannot scan %T into a time", src)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("parsing time %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
