package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoomIDShape(t *testing.T) {
	re := regexp.MustCompile(`^[a-z]{3}-[a-z]{4}-[a-z]{3}$`)
	for range 50 {
		id := NewRoomID()
		assert.Regexp(t, re, string(id))
		assert.True(t, id.Valid())
	}
}

func TestRoomIDValid(t *testing.T) {
	assert.False(t, RoomID("").Valid())
	assert.True(t, RoomID("Room-1").Valid())
}
