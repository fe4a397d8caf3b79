package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kingrea/howl/internal/agent"
	"github.com/kingrea/howl/internal/config"
)

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("HOWL_BRIDGE_PORT", "9001")
	t.Setenv("HOWL_BRIDGE_HOST", "0.0.0.0")
	t.Setenv("HOWL_BRIDGE_ENABLED", "false")
	cfg := &config.Config{}
	settings := SettingsFromConfig(cfg)
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
}

func TestInboundNormalizeAndValidate(t *testing.T) {
	msg := Inbound{
		Sender:      " player2 ",
		Channel:     "play-arena",
		ChannelType: "Group",
		Text:        "good morning",
	}
	msg.Normalize()
	if msg.Version != MessageSchemaVersion {
		t.Fatalf("version not defaulted: %d", msg.Version)
	}
	if msg.MessageID == "" {
		t.Fatalf("missing message id should be generated")
	}
	if msg.Sender != "player2" || msg.ChannelType != "group" {
		t.Fatalf("fields not canonicalized: %+v", msg)
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}

	msg.ChannelType = "broadcast"
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected channel_type error")
	}
}

func testSettings() Settings {
	return Settings{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		MaxBodyBytes: 4096,
		ReadTimeout:  time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  time.Second,
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestServerNotifyAndHealth(t *testing.T) {
	t.Parallel()
	a := agent.New("test_player", nil)
	feed := NewRouter(RouterWithSubscriberCapacity(4))
	sub := feed.Subscribe(TopicTurns)
	defer sub.Close()
	srv := NewServer(testSettings(), a, WithFeed(feed))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	base := srv.BaseURL()

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || health.Agent != "test_player" {
		t.Fatalf("health = %d %+v", resp.StatusCode, health)
	}

	resp = postJSON(t, base+"/notify", map[string]any{
		"sender":       "player2",
		"channel":      "play-arena",
		"channel_type": "group",
		"text":         "good morning everyone",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	if _, ok := a.Store().Player("player2"); !ok {
		t.Fatalf("notify did not reach the agent")
	}
	select {
	case update := <-sub.Updates:
		if update.Kind != KindTurn || update.Snapshot == nil {
			t.Fatalf("unexpected feed update: %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("no feed update published")
	}
}

func TestServerRespondReturnsResponse(t *testing.T) {
	t.Parallel()
	a := agent.New("test_player", nil)
	srv := NewServer(testSettings(), a)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}

	resp := postJSON(t, srv.BaseURL()+"/respond", map[string]any{
		"sender":       "moderator",
		"channel":      "play-arena",
		"channel_type": "group",
		"text":         "Please share your thoughts",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body respondResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Without an oracle the agent degrades to its neutral fallback but
	// must still answer.
	if body.Response == "" {
		t.Fatalf("empty response from /respond")
	}
}

func TestServerRejectsInvalidMessages(t *testing.T) {
	t.Parallel()
	srv := NewServer(testSettings(), agent.New("test_player", nil))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	base := srv.BaseURL()

	resp := postJSON(t, base+"/notify", map[string]any{
		"sender":       "player2",
		"channel_type": "group",
		"text":         "missing channel",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, err := http.Post(base+"/notify", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
}

func TestServerEnforcesPayloadLimit(t *testing.T) {
	t.Parallel()
	settings := testSettings()
	settings.MaxBodyBytes = 64
	srv := NewServer(settings, agent.New("test_player", nil))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	resp := postJSON(t, srv.BaseURL()+"/notify", map[string]any{
		"sender":       "player2",
		"channel":      "play-arena",
		"channel_type": "group",
		"text":         string(bytes.Repeat([]byte("a"), 512)),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}
