package domain

import (
	"math/rand/v2"
	"strings"
)

type RoomID string

const roomIDCharset = "abcdefghijklmnopqrstuvwxyz"

// NewRoomID generates an id shaped like "abc-defg-hij".
func NewRoomID() RoomID {
	part := func(n int) string {
		var b strings.Builder
		b.Grow(n)
		for range n {
			b.WriteByte(roomIDCharset[rand.IntN(len(roomIDCharset))])
		}
		return b.String()
	}
	return RoomID(part(3) + "-" + part(4) + "-" + part(3))
}

// Valid reports whether the id can name a room. Format is not checked.
func (id RoomID) Valid() bool {
	return id != ""
}
