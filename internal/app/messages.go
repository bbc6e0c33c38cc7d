package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/voicerooms/internal/core"
	"github.com/dkeye/voicerooms/internal/domain"
	"github.com/pion/webrtc/v4"
)

// Outbound message types.
const (
	TypeYourID     = "your-id"
	TypeRoster     = "roster"
	TypePeerJoined = "peer-joined"
	TypePeerLeft   = "peer-left"
	TypeSignal     = "signal"
	TypeKicked     = "kicked"
	TypeWhoAmI     = "whoami"
	TypePong       = "pong"
	TypeError      = "error"
)

// Codes carried by error frames.
const (
	CodeBadPayload    = "bad_payload"
	CodeAlreadyJoined = "already_joined"
	CodeInvalidRoom   = "invalid_room"
	CodeNotJoined     = "not_joined"
	CodeRateLimited   = "rate_limited"
	CodeUnknownType   = "unknown_type"
)

type RosterEntry struct {
	ID      domain.ParticipantID `json:"id"`
	Name    string               `json:"name"`
	Icon    string               `json:"icon"`
	IsOwner bool                 `json:"isOwner"`
}

func RosterOf(ps []domain.Participant) []RosterEntry {
	out := make([]RosterEntry, len(ps))
	for i, p := range ps {
		out[i] = RosterEntry{ID: p.ID, Name: p.DisplayName, Icon: p.Icon, IsOwner: p.IsOwner}
	}
	return out
}

type YourIDMsg struct {
	Type       string               `json:"type"`
	ID         domain.ParticipantID `json:"id"`
	RoomID     domain.RoomID        `json:"roomId"`
	ICEServers []webrtc.ICEServer   `json:"iceServers"`
}

type RosterMsg struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	Members []RosterEntry `json:"members"`
}

type PeerJoinedMsg struct {
	Type string               `json:"type"`
	ID   domain.ParticipantID `json:"id"`
	Name string               `json:"name"`
	Icon string               `json:"icon"`
}

type PeerLeftMsg struct {
	Type string               `json:"type"`
	ID   domain.ParticipantID `json:"id"`
}

type signalHead struct {
	Type string               `json:"type"`
	From domain.ParticipantID `json:"from"`
}

// EncodeSignal builds {"type":"signal","from":...,"payload":...} with the
// payload bytes copied as received. json.Marshal would compact and
// HTML-escape them.
func EncodeSignal(from domain.ParticipantID, payload json.RawMessage) (core.Frame, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	if !json.Valid(payload) {
		return nil, errors.New("encode signal: payload is not valid JSON")
	}
	head, err := json.Marshal(signalHead{Type: TypeSignal, From: from})
	if err != nil {
		return nil, fmt.Errorf("encode signal: %w", err)
	}
	f := make(core.Frame, 0, len(head)+len(payload)+len(`,"payload":`)+1)
	f = append(f, head[:len(head)-1]...)
	f = append(f, `,"payload":`...)
	f = append(f, payload...)
	return append(f, '}'), nil
}

type WhoAmIMsg struct {
	Type    string               `json:"type"`
	ID      domain.ParticipantID `json:"id"`
	RoomID  domain.RoomID        `json:"roomId,omitempty"`
	Members []RosterEntry        `json:"members,omitempty"`
}

type ErrorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type typeOnly struct {
	Type string `json:"type"`
}

func KickedMsg() any { return typeOnly{Type: TypeKicked} }
func PongMsg() any   { return typeOnly{Type: TypePong} }

func ErrorFrame(code string) any { return ErrorMsg{Type: TypeError, Error: code} }

// Encode marshals an outbound message.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return b, nil
}

// Send encodes v and enqueues it on conn without blocking.
func Send(conn core.SignalConnection, v any) error {
	if conn == nil {
		return core.ErrConnClosed
	}
	f, err := Encode(v)
	if err != nil {
		return err
	}
	return conn.TrySend(f)
}

// deliver enqueues an already encoded frame and applies the policy when the
// recipient cannot keep up.
func deliver(policy Policy, pid domain.ParticipantID, conn core.SignalConnection, f core.Frame) error {
	if conn == nil {
		return core.ErrConnClosed
	}
	err := conn.TrySend(f)
	if errors.Is(err, core.ErrBackpressure) && policy != nil && policy.OnBackPressure(pid) == DisconnectMember {
		conn.Close()
	}
	return err
}
