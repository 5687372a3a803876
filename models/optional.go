package models

import "encoding/json"

// Optional holds a value whose presence is tracked separately from its
// content, so `{"amount": 0}` and `{}` decode differently.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON is only invoked when the key is present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
