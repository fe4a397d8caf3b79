// internal/config/config.go
//
// This package handles configuration and the .howl directory structure.
// Every directory an agent runs from gets a .howl/ folder created in it.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// HowlDir is the name of the directory we create per agent run
	HowlDir = ".howl"

	defaultAgentName   = "player"
	defaultGameChannel = "play-arena"
	defaultPackChannel = "wolf's-den"
	defaultModerator   = "moderator"
	defaultModel       = "gpt-4o-mini"
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultHost        = "127.0.0.1"
	defaultPort        = 8787
)

const defaultConfigYAML = `# howl agent configuration
version: 1

agent:
  name: player

channels:
  game: play-arena
  pack: wolf's-den
  moderator: moderator

# The chat-completions endpoint the agent reasons through. The API key is
# never stored here; set HOWL_API_KEY in the environment.
oracle:
  base_url: https://api.openai.com/v1
  model: gpt-4o-mini
  temperature: 0.7
  max_tokens: 500
  timeout_seconds: 60

bridge:
  host: 127.0.0.1
  port: 8787
`

// AgentConfig names the player this process controls.
type AgentConfig struct {
	Name string `yaml:"name"`
}

// ChannelConfig names the game's conversation surfaces.
type ChannelConfig struct {
	Game      string `yaml:"game"`
	Pack      string `yaml:"pack"`
	Moderator string `yaml:"moderator"`
}

// OracleConfig points at a chat-completions endpoint. The API key is taken
// from the environment only and never round-trips through the yaml file.
type OracleConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// BridgeConfig sets where the HTTP bridge listens.
type BridgeConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// FileConfig models .howl/config.yaml.
type FileConfig struct {
	Version  int           `yaml:"version"`
	Agent    AgentConfig   `yaml:"agent"`
	Channels ChannelConfig `yaml:"channels"`
	Oracle   OracleConfig  `yaml:"oracle"`
	Bridge   BridgeConfig  `yaml:"bridge"`
}

// Config holds the runtime configuration for one agent process.
type Config struct {
	// BaseDir is the directory the agent was started from
	BaseDir string

	// HowlDir is BaseDir/.howl
	HowlDir string

	// APIKey comes from HOWL_API_KEY (or OPENAI_API_KEY as a fallback)
	APIKey string

	File FileConfig
}

// InitHowlDir creates the .howl directory structure in the given base
// directory. This is called on every startup.
//
// Structure created:
// .howl/
// ├── logs/         <- process diagnostics
// ├── journal/      <- game journal (one file per session)
// └── results/      <- per-game result JSON for the metrics command
func InitHowlDir(baseDir string) error {
	howlDir := filepath.Join(baseDir, HowlDir)

	dirs := []string{
		filepath.Join(howlDir, "logs"),
		filepath.Join(howlDir, "journal"),
		filepath.Join(howlDir, "results"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureConfigFile(filepath.Join(howlDir, "config.yaml"))
}

// NewConfig loads configuration for an agent run rooted at baseDir.
func NewConfig(baseDir string) (*Config, error) {
	cfg := &Config{
		BaseDir: baseDir,
		HowlDir: filepath.Join(baseDir, HowlDir),
		File:    defaultFileConfig(),
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.HowlDir, "logs")
}

// JournalDir returns the path to the game journal directory
func (c *Config) JournalDir() string {
	return filepath.Join(c.HowlDir, "journal")
}

// ResultsDir returns the directory scanned by the metrics command
func (c *Config) ResultsDir() string {
	return filepath.Join(c.HowlDir, "results")
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.HowlDir, "config.yaml")
}

// OracleTimeout returns the oracle request timeout as a duration.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.File.Oracle.TimeoutSeconds) * time.Second
}

// BridgeAddr returns the host:port the bridge should bind.
func (c *Config) BridgeAddr() string {
	return fmt.Sprintf("%s:%d", c.File.Bridge.Host, c.File.Bridge.Port)
}

func (c *Config) loadFile() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.File = parsed
	return nil
}

// applyEnv layers HOWL_* environment variables over the file values. The
// API key is environment-only.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOWL_API_KEY"); v != "" {
		c.APIKey = v
	} else {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("HOWL_AGENT_NAME"); v != "" {
		c.File.Agent.Name = v
	}
	if v := os.Getenv("HOWL_ORACLE_BASE_URL"); v != "" {
		c.File.Oracle.BaseURL = v
	}
	if v := os.Getenv("HOWL_ORACLE_MODEL"); v != "" {
		c.File.Oracle.Model = v
	}
	if v := os.Getenv("HOWL_BRIDGE_HOST"); v != "" {
		c.File.Bridge.Host = v
	}
	if v := os.Getenv("HOWL_BRIDGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.File.Bridge.Port = port
		}
	}
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Agent:   AgentConfig{Name: defaultAgentName},
		Channels: ChannelConfig{
			Game:      defaultGameChannel,
			Pack:      defaultPackChannel,
			Moderator: defaultModerator,
		},
		Oracle: OracleConfig{
			BaseURL:        defaultBaseURL,
			Model:          defaultModel,
			Temperature:    0.7,
			MaxTokens:      500,
			TimeoutSeconds: 60,
		},
		Bridge: BridgeConfig{Host: defaultHost, Port: defaultPort},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	def := defaultFileConfig()
	if strings.TrimSpace(fc.Agent.Name) == "" {
		fc.Agent.Name = def.Agent.Name
	}
	if strings.TrimSpace(fc.Channels.Game) == "" {
		fc.Channels.Game = def.Channels.Game
	}
	if strings.TrimSpace(fc.Channels.Pack) == "" {
		fc.Channels.Pack = def.Channels.Pack
	}
	if strings.TrimSpace(fc.Channels.Moderator) == "" {
		fc.Channels.Moderator = def.Channels.Moderator
	}
	if strings.TrimSpace(fc.Oracle.BaseURL) == "" {
		fc.Oracle.BaseURL = def.Oracle.BaseURL
	}
	if strings.TrimSpace(fc.Oracle.Model) == "" {
		fc.Oracle.Model = def.Oracle.Model
	}
	if fc.Oracle.Temperature == 0 {
		fc.Oracle.Temperature = def.Oracle.Temperature
	}
	if fc.Oracle.MaxTokens == 0 {
		fc.Oracle.MaxTokens = def.Oracle.MaxTokens
	}
	if fc.Oracle.TimeoutSeconds == 0 {
		fc.Oracle.TimeoutSeconds = def.Oracle.TimeoutSeconds
	}
	if strings.TrimSpace(fc.Bridge.Host) == "" {
		fc.Bridge.Host = def.Bridge.Host
	}
	if fc.Bridge.Port == 0 {
		fc.Bridge.Port = def.Bridge.Port
	}
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if fc.Bridge.Port < 0 || fc.Bridge.Port > 65535 {
		return fmt.Errorf("bridge port %d is out of range", fc.Bridge.Port)
	}
	if fc.Oracle.Temperature < 0 || fc.Oracle.Temperature > 2 {
		return fmt.Errorf("oracle temperature %.2f is out of range", fc.Oracle.Temperature)
	}
	if fc.Channels.Game == fc.Channels.Pack {
		return fmt.Errorf("game and pack channels must differ")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}
