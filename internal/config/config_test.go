package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitHowlDirCreatesStructure(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitHowlDir(baseDir); err != nil {
		t.Fatalf("InitHowlDir returned error: %v", err)
	}
	for _, sub := range []string{"logs", "journal", "results"} {
		if _, err := os.Stat(filepath.Join(baseDir, ".howl", sub)); err != nil {
			t.Fatalf("expected %s directory: %v", sub, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(baseDir, ".howl", "config.yaml"))
	if err != nil {
		t.Fatalf("expected default config file: %v", err)
	}
	if !strings.Contains(string(data), "play-arena") {
		t.Fatalf("default config missing game channel:\n%s", data)
	}
}

func TestInitHowlDirKeepsExistingConfig(t *testing.T) {
	baseDir := t.TempDir()
	howlDir := filepath.Join(baseDir, ".howl")
	if err := os.MkdirAll(howlDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := "version: 1\nagent:\n  name: silver\n"
	if err := os.WriteFile(filepath.Join(howlDir, "config.yaml"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitHowlDir(baseDir); err != nil {
		t.Fatalf("InitHowlDir returned error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(howlDir, "config.yaml"))
	if string(data) != custom {
		t.Fatalf("existing config was overwritten:\n%s", data)
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	t.Setenv("HOWL_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	baseDir := t.TempDir()

	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.File.Agent.Name != defaultAgentName {
		t.Fatalf("expected default agent name, got %q", c.File.Agent.Name)
	}
	if c.File.Channels.Pack != defaultPackChannel {
		t.Fatalf("expected default pack channel, got %q", c.File.Channels.Pack)
	}
	if c.BridgeAddr() != "127.0.0.1:8787" {
		t.Fatalf("wrong bridge addr: %s", c.BridgeAddr())
	}
	if c.APIKey != "" {
		t.Fatalf("API key should be empty without environment, got %q", c.APIKey)
	}
}

func TestNewConfigParsesYamlAndFillsGaps(t *testing.T) {
	t.Setenv("HOWL_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	baseDir := t.TempDir()
	howlDir := filepath.Join(baseDir, ".howl")
	if err := os.MkdirAll(howlDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
agent:
  name: silver
channels:
  game: town-square
oracle:
  model: local-model
bridge:
  port: 9900
`)
	if err := os.WriteFile(filepath.Join(howlDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.File.Agent.Name != "silver" {
		t.Fatalf("agent name not loaded: %q", c.File.Agent.Name)
	}
	if c.File.Channels.Game != "town-square" {
		t.Fatalf("game channel not loaded: %q", c.File.Channels.Game)
	}
	if c.File.Channels.Pack != defaultPackChannel {
		t.Fatalf("missing pack channel should default, got %q", c.File.Channels.Pack)
	}
	if c.File.Oracle.Model != "local-model" {
		t.Fatalf("oracle model not loaded: %q", c.File.Oracle.Model)
	}
	if c.File.Oracle.MaxTokens != 500 {
		t.Fatalf("missing max_tokens should default, got %d", c.File.Oracle.MaxTokens)
	}
	if c.File.Bridge.Port != 9900 {
		t.Fatalf("bridge port not loaded: %d", c.File.Bridge.Port)
	}
}

func TestNewConfigEnvOverrides(t *testing.T) {
	baseDir := t.TempDir()
	t.Setenv("HOWL_API_KEY", "sk-test")
	t.Setenv("HOWL_AGENT_NAME", "env-player")
	t.Setenv("HOWL_BRIDGE_PORT", "7001")

	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.APIKey != "sk-test" {
		t.Fatalf("API key not taken from environment: %q", c.APIKey)
	}
	if c.File.Agent.Name != "env-player" {
		t.Fatalf("agent name override not applied: %q", c.File.Agent.Name)
	}
	if c.File.Bridge.Port != 7001 {
		t.Fatalf("bridge port override not applied: %d", c.File.Bridge.Port)
	}
}

func TestNewConfigValidation(t *testing.T) {
	t.Setenv("HOWL_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	baseDir := t.TempDir()
	howlDir := filepath.Join(baseDir, ".howl")
	if err := os.MkdirAll(howlDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
channels:
  game: same-room
  pack: same-room
`)
	if err := os.WriteFile(filepath.Join(howlDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfig(baseDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}
