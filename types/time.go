package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// OptionalTime is a timestamp that the API may send as null, omit, or
// fill with a placeholder. Anything that does not parse as an RFC 3339
// timestamp after year 1 decodes to an invalid (zero) value instead of
// failing the whole response.
type OptionalTime struct {
	Time  time.Time
	Valid bool
}

func NewOptionalTime(t time.Time) OptionalTime {
	return OptionalTime{Time: t, Valid: true}
}

// Get returns the time and whether it is set.
func (o OptionalTime) Get() (time.Time, bool) {
	return o.Time, o.Valid
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	*o = OptionalTime{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.Year() <= 1 {
		return nil
	}
	*o = NewOptionalTime(t)
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Time.Format(time.RFC3339Nano))
}

// OptionalBytes is a storage amount the API reports as -1 when the
// caller has no permission to see it.
type OptionalBytes struct {
	Bytes uint64
	Valid bool
}

func (o OptionalBytes) Get() (uint64, bool) {
	return o.Bytes, o.Valid
}

func (o *OptionalBytes) UnmarshalJSON(data []byte) error {
	*o = OptionalBytes{}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	*o = OptionalBytes{Bytes: n, Valid: true}
	return nil
}

func (o OptionalBytes) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("-1"), nil
	}
	return json.Marshal(o.Bytes)
}
