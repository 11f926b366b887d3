package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/maktaba/core"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Hello World", core.CleanString("  Hello World \n"))
	assert.Equal(t, "hello world", core.CleanString("  Hello World \n", true))
	assert.Equal(t, "", core.CleanString("   "))
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 4.25, want: 4.3},
		{in: 4.24, want: 4.2},
		{in: 13.0 / 3.0, want: 4.3},
		{in: 5, want: 5},
		{in: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.RoundTo(tt.in, 1), "RoundTo(%v, 1)", tt.in)
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, core.Percentage(0, 0))
	assert.Equal(t, 0.0, core.Percentage(3, 0))
	assert.Equal(t, 33.3, core.Percentage(1, 3))
	assert.Equal(t, 100.0, core.Percentage(4, 4))
}

func TestErrors(t *testing.T) {
	notFound := core.NewNotFoundError("resource", "42")
	assert.EqualError(t, notFound, `resource "42" not found`)
	assert.True(t, core.IsNotFound(notFound))
	assert.False(t, core.IsStoreFailure(notFound))

	assert.Nil(t, core.NewStoreError("op", nil))
	storeErr := core.NewStoreError("selecting reviews", assert.AnError)
	assert.True(t, core.IsStoreFailure(storeErr))
	assert.ErrorIs(t, storeErr, assert.AnError)

	verr := core.NewValidationError(nil, core.FieldError{Field: "rating", Error: "out of range"})
	assert.EqualError(t, verr, "rating: out of range")
	assert.True(t, core.IsValidation(verr))
}
