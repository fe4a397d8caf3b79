package bridge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/howl/internal/agent"
	"github.com/kingrea/howl/internal/memory"
)

const (
	// ProtocolVersion identifies the bridge contract version exposed via /health.
	ProtocolVersion = "1.0.0"
	// MessageSchemaVersion is the currently supported inbound message version.
	MessageSchemaVersion = 1
)

// Inbound captures a single chat message delivered by the game host.
type Inbound struct {
	Version     int       `json:"version"`
	MessageID   string    `json:"message_id"`
	Sender      string    `json:"sender"`
	Channel     string    `json:"channel"`
	ChannelType string    `json:"channel_type"`
	Text        string    `json:"text"`
	ClientTime  time.Time `json:"client_time"`
	ServerTime  time.Time `json:"server_time"`
}

// Normalize applies defaults and canonical formatting before validation.
// Hosts that do not assign message IDs get one generated here.
func (m *Inbound) Normalize() {
	if m == nil {
		return
	}
	if m.Version == 0 {
		m.Version = MessageSchemaVersion
	}
	m.MessageID = strings.TrimSpace(m.MessageID)
	if m.MessageID == "" {
		m.MessageID = uuid.NewString()
	}
	m.Sender = strings.TrimSpace(m.Sender)
	m.Channel = strings.TrimSpace(m.Channel)
	m.ChannelType = strings.ToLower(strings.TrimSpace(m.ChannelType))
}

// StampServerTime overwrites ServerTime with the supplied clock reading (UTC).
func (m *Inbound) StampServerTime(now time.Time) {
	if m == nil {
		return
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	m.ServerTime = now.UTC()
}

// Validate enforces baseline schema requirements for incoming messages.
func (m Inbound) Validate() error {
	if m.Version != MessageSchemaVersion {
		return fmt.Errorf("version %d not supported", m.Version)
	}
	if m.Sender == "" {
		return errors.New("sender is required")
	}
	if m.Channel == "" {
		return errors.New("channel is required")
	}
	if m.ChannelType != string(agent.ChannelDirect) && m.ChannelType != string(agent.ChannelGroup) {
		return fmt.Errorf("channel_type %q must be direct or group", m.ChannelType)
	}
	if strings.TrimSpace(m.Text) == "" {
		return errors.New("text is required")
	}
	return nil
}

// AgentMessage converts the wire form into the agent's message type.
func (m Inbound) AgentMessage() agent.Message {
	return agent.Message{
		ID:          m.MessageID,
		Sender:      m.Sender,
		Channel:     m.Channel,
		ChannelType: agent.ChannelType(m.ChannelType),
		Text:        m.Text,
	}
}

// Update is one feed entry published to status displays after the agent
// handles a message.
type Update struct {
	ID       string
	Topic    string
	Kind     string
	Line     string
	Snapshot *memory.Snapshot
}

// Feed topics and update kinds.
const (
	TopicTurns = "turns"

	KindTurn    = "turn"
	KindReply   = "reply"
	KindError   = "error"
	KindGameEnd = "game_end"
)

// Logger records bridge status information. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Agent         string `json:"agent"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type notifyResponse struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"server_time"`
}

type respondResponse struct {
	Response   string    `json:"response"`
	ServerTime time.Time `json:"server_time"`
}
