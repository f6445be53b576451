package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextValue(t *testing.T) {
	assert.Equal(t, "", TextValue(nil))
	assert.Equal(t, " A-1 ", TextValue(" A-1 "))
	assert.Equal(t, "1001", TextValue(1001.0))
	assert.Equal(t, "12.5", TextValue(12.5))
	assert.Equal(t, "7", TextValue(7))
}

func TestBoolValue(t *testing.T) {
	assert.True(t, BoolValue("TRUE"))
	assert.True(t, BoolValue(" true "))
	assert.False(t, BoolValue("yes"))
	assert.False(t, BoolValue("false"))
	assert.True(t, BoolValue(true))
	assert.True(t, BoolValue(1))
	assert.False(t, BoolValue(0))
}

func TestNumberOrZero(t *testing.T) {
	assert.Equal(t, 3.75, NumberOrZero("3.75"))
	assert.Equal(t, 4.0, NumberOrZero(4))
	assert.Equal(t, 0.0, NumberOrZero("n/a"))
	assert.Equal(t, 0.0, NumberOrZero(nil))
}
