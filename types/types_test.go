package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MaxRows, ClampLimit(0))
	assert.Equal(t, MaxRows, ClampLimit(-1))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 40, ClampLimit(40))
	assert.Equal(t, MaxRows, ClampLimit(MaxRows+1))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "Fresh", EscapeLike("Fresh"))
	assert.Equal(t, `50\% off`, EscapeLike("50% off"))
	assert.Equal(t, `a\_b\\c`, EscapeLike(`a_b\c`))
}
