package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownKindsAndStepCounts(t *testing.T) {
	assert.True(t, KnownKind(KindSignup))
	assert.True(t, KnownKind(KindAddUser))
	assert.True(t, KnownKind(KindCreateCourse))
	assert.False(t, KnownKind("upload-video"))

	assert.Equal(t, 3, StepCount(KindSignup))
	assert.Equal(t, 2, StepCount(KindAddUser))
	assert.Equal(t, 3, StepCount(KindCreateCourse))
}

func TestValidateStepReportsTheFailingField(t *testing.T) {
	err := ValidateStep(KindSignup, 1, []byte(`{"name":"Alice","email":"nope"}`))
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "email", fieldErr.Field)

	err = ValidateStep(KindSignup, 2, []byte(`{"password":"secret123","confirmPassword":"different"}`))
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "confirmPassword", fieldErr.Field)
}

func TestValidateStepAcceptsValidPayloads(t *testing.T) {
	assert.NoError(t, ValidateStep(KindSignup, 1, []byte(`{"name":"Alice","email":"alice@example.com"}`)))
	assert.NoError(t, ValidateStep(KindAddUser, 2, []byte(`{"role":"teacher","password":"secret123"}`)))
	assert.NoError(t, ValidateStep(KindCreateCourse, 3, []byte(`{"lectures":[{"title":"Intro","duration":120}]}`)))
}

func TestValidateStepRejectsBadRolesAndBounds(t *testing.T) {
	var fieldErr *FieldError

	err := ValidateStep(KindAddUser, 2, []byte(`{"role":"superuser","password":"secret123"}`))
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "role", fieldErr.Field)

	err = ValidateStep(KindCreateCourse, 2, []byte(`{"price":-5}`))
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "price", fieldErr.Field)

	err = ValidateStep(KindCreateCourse, 3, []byte(`{"lectures":[{"videoUrl":"https://cdn.example.com/a.mp4"}]}`))
	assert.Error(t, err)
}

func TestValidateStepUnknownStep(t *testing.T) {
	assert.Error(t, ValidateStep(KindSignup, 0, []byte(`{}`)))
	assert.Error(t, ValidateStep(KindSignup, 4, []byte(`{}`)))
	assert.Error(t, ValidateStep("unknown", 1, []byte(`{}`)))
}
