package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParticipantDefaults(t *testing.T) {
	p := NewParticipant("p1", "   ", "", DefaultProfile())

	assert.Equal(t, ParticipantID("p1"), p.ID)
	assert.Equal(t, DefaultName, p.DisplayName)
	assert.Contains(t, DefaultIcons, p.Icon)
	assert.False(t, p.IsOwner)
	assert.False(t, p.JoinedAt.IsZero())
}

func TestNewParticipantKeepsValues(t *testing.T) {
	p := NewParticipant("p1", " Alice ", "https://example.com/a.png", DefaultProfile())

	assert.Equal(t, "Alice", p.DisplayName)
	assert.Equal(t, "https://example.com/a.png", p.Icon)
}

func TestNewParticipantTruncatesLongName(t *testing.T) {
	name := strings.Repeat("é", MaxDisplayNameLen+10)
	p := NewParticipant("p1", name, "x", DefaultProfile())

	assert.Equal(t, MaxDisplayNameLen, len([]rune(p.DisplayName)))
}

func TestNewParticipantReplacesOversizedIcon(t *testing.T) {
	prof := Profile{Name: "Anon", Icons: []string{"fallback"}}
	p := NewParticipant("p1", "", strings.Repeat("a", MaxIconLen+1), prof)

	assert.Equal(t, "Anon", p.DisplayName)
	assert.Equal(t, "fallback", p.Icon)
}

func TestNewParticipantIDUnique(t *testing.T) {
	seen := make(map[ParticipantID]struct{})
	for range 100 {
		id := NewParticipantID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
