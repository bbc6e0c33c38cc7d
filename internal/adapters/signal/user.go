package signal

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	profileNameKey = "profile_name"
	profileIconKey = "profile_icon"
)

// Profile is what a browser remembered about itself between visits. It
// fills in join fields the client leaves out.
type Profile struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// LoadProfile reads the profile from the cookie session. Requests served
// without the sessions middleware get an empty profile.
func LoadProfile(c *gin.Context) Profile {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return Profile{}
	}
	s := sessions.Default(c)
	var p Profile
	if v, ok := s.Get(profileNameKey).(string); ok {
		p.Name = v
	}
	if v, ok := s.Get(profileIconKey).(string); ok {
		p.Icon = v
	}
	return p
}

// StoreProfile writes the profile into the cookie session.
func StoreProfile(c *gin.Context, p Profile) error {
	s := sessions.Default(c)
	s.Set(profileNameKey, p.Name)
	s.Set(profileIconKey, p.Icon)
	if err := s.Save(); err != nil {
		return err
	}
	log.Debug().Str("module", "signal").Str("name", p.Name).Msg("profile stored")
	return nil
}
