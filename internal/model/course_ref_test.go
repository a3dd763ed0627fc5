package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRefAcceptsAllClientShapes(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  uint
	}{
		{"bare number", `42`, 42},
		{"numeric string", `"42"`, 42},
		{"expanded object", `{"id":42,"title":"Go Basics"}`, 42},
		{"object with string id", `{"id":"42"}`, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ref CourseRef
			require.NoError(t, json.Unmarshal([]byte(tc.input), &ref))
			assert.Equal(t, tc.want, ref.ID)
			assert.True(t, ref.Matches(tc.want))
			assert.False(t, ref.Matches(tc.want+1))
		})
	}
}

func TestCourseRefRejectsGarbage(t *testing.T) {
	for _, input := range []string{`"abc"`, `{}`, `{"id":"abc"}`, `true`, `[1]`} {
		var ref CourseRef
		assert.Error(t, json.Unmarshal([]byte(input), &ref), "input %s", input)
	}
}

func TestCourseRefMarshalsAsBareID(t *testing.T) {
	out, err := json.Marshal(CourseRef{ID: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `7`, string(out))
}

func TestComputeProgressRounding(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 4, 0},
		{1, 4, 25},
		{3, 4, 75},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds half up
		{0, 0, 0},  // no lectures, no progress
		{0, -1, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ComputeProgress(tc.completed, tc.total),
			"completed=%d total=%d", tc.completed, tc.total)
	}
}
