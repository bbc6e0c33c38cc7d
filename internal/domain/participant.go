// Package domain contains entities without transport or lifecycle logic, just meta-data.
package domain

import (
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxDisplayNameLen = 36
	MaxIconLen        = 2048
	DefaultName       = "Guest"
)

// DefaultIcons is the fallback icon set used when a participant joins without one.
var DefaultIcons = []string{
	"https://cdn.glitch.global/67560e0a-8219-49e8-b266-19355cf00f35/k12zoneguy1.png?v=1748558654514",
	"https://cdn.glitch.global/67560e0a-8219-49e8-b266-19355cf00f35/k12zoneguy2.png?v=1748558657344",
	"https://cdn.glitch.global/67560e0a-8219-49e8-b266-19355cf00f35/Noicon.png?v=1748558650328",
	"https://cdn.glitch.global/67560e0a-8219-49e8-b266-19355cf00f35/ee219e7a-ba9c-42f7-b9f0-2a574b256ab9.png?v=1748558651617",
}

type ParticipantID string

// NewParticipantID mints a connection identity. It is never reused.
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

type Participant struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"name"`
	Icon        string        `json:"icon"`
	IsOwner     bool          `json:"isOwner"`
	JoinedAt    time.Time     `json:"joinedAt"`
}

// Profile holds the defaults applied to a join request.
type Profile struct {
	Name  string
	Icons []string
}

// DefaultProfile returns the built-in name and icon set.
func DefaultProfile() Profile {
	return Profile{Name: DefaultName, Icons: DefaultIcons}
}

// NewParticipant builds a participant with the given id. Name and icon
// constraints are advisory: bad values are replaced, never rejected.
func NewParticipant(id ParticipantID, name, icon string, p Profile) Participant {
	return Participant{
		ID:          id,
		DisplayName: p.normalizeName(name),
		Icon:        p.normalizeIcon(icon),
		JoinedAt:    time.Now(),
	}
}

func (p Profile) normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		if p.Name == "" {
			return DefaultName
		}
		return p.Name
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		name = string([]rune(name)[:MaxDisplayNameLen])
	}
	return name
}

func (p Profile) normalizeIcon(icon string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" && len(icon) <= MaxIconLen {
		return icon
	}
	icons := p.Icons
	if len(icons) == 0 {
		icons = DefaultIcons
	}
	return icons[rand.IntN(len(icons))]
}
