package evm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress("0x1111111111111111111111111111111111111111"))
	assert.True(t, IsValidAddress("0xAbCdEf0123456789aBcDeF0123456789abcdef01"))

	assert.False(t, IsValidAddress(""))
	assert.False(t, IsValidAddress("1111111111111111111111111111111111111111"))
	assert.False(t, IsValidAddress("0x111111111111111111111111111111111111111"))    // too short
	assert.False(t, IsValidAddress("0x11111111111111111111111111111111111111111"))  // too long
	assert.False(t, IsValidAddress("0xzz11111111111111111111111111111111111111"))
}
