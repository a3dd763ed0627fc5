package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CourseRef normalizes the two shapes clients send for a course reference: a
// bare identifier (number or numeric string) or an expanded course object that
// embeds the id. Normalization happens here, at the binding boundary, so the
// rest of the code only ever compares bare ids.
type CourseRef struct {
	ID uint
}

func (r *CourseRef) UnmarshalJSON(data []byte) error {
	var n uint
	if err := json.Unmarshal(data, &n); err == nil {
		r.ID = n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("course ref: invalid id %q", s)
		}
		r.ID = uint(id)
		return nil
	}

	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("course ref: unsupported shape: %w", err)
	}
	if len(obj.ID) == 0 {
		return fmt.Errorf("course ref: object without id")
	}
	// The embedded id follows the same number-or-numeric-string rules.
	var inner CourseRef
	if err := inner.UnmarshalJSON(obj.ID); err != nil {
		return fmt.Errorf("course ref: invalid embedded id %s", obj.ID)
	}
	r.ID = inner.ID
	return nil
}

func (r CourseRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Matches reports whether the reference points at the given course id,
// regardless of the shape it was parsed from.
func (r CourseRef) Matches(courseID uint) bool {
	return r.ID == courseID
}
