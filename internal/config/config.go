package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/magblast/magblast-server-go/internal/game"
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g.
// MAGBLAST_SERVER_WEBSOCKET_ADDRESS.
const EnvPrefix = "MAGBLAST"

// Config is the server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig holds the network listeners and capacity limits
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	GRPC            GRPCConfig      `mapstructure:"grpc"`
	MaxGames        int             `mapstructure:"max_games"`
	GameRetention   time.Duration   `mapstructure:"game_retention"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// WebSocketConfig configures the player-facing websocket endpoint
type WebSocketConfig struct {
	Address        string        `mapstructure:"address"`
	Path           string        `mapstructure:"path"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	// RateLimit is the sustained number of messages per second a connection
	// may send; RateBurst is how many may arrive at once.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// GRPCConfig configures the health service listener
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig selects the zap level and encoder
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds the default settings of new games
type GameConfig struct {
	StartingHandSize int    `mapstructure:"starting_hand_size"`
	AttackMode       string `mapstructure:"attack_mode"`
	Flavor           string `mapstructure:"flavor"`
}

// DatabaseConfig configures the archive database. An empty DSN disables
// archiving.
type DatabaseConfig struct {
	DSN            string        `mapstructure:"dsn"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// Load reads the configuration file at path, fills in defaults and applies
// MAGBLAST_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.websocket.read_limit", 4096)
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.websocket.rate_limit", 10.0)
	v.SetDefault("server.websocket.rate_burst", 20)
	v.SetDefault("server.grpc.enabled", true)
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.max_games", 1000)
	v.SetDefault("server.game_retention", 10*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.starting_hand_size", game.DefaultHandSize)
	v.SetDefault("game.attack_mode", string(game.AttackModeFreeForAll))
	v.SetDefault("game.flavor", string(cards.FlavorOriginal))

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.connect_timeout", 5*time.Second)
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.WebSocket.Address == "" {
		return errors.New("server.websocket.address is required")
	}
	if !strings.HasPrefix(c.Server.WebSocket.Path, "/") {
		return fmt.Errorf("server.websocket.path %q must start with /", c.Server.WebSocket.Path)
	}
	if c.Server.WebSocket.RateLimit <= 0 || c.Server.WebSocket.RateBurst <= 0 {
		return errors.New("server.websocket rate limit and burst must be positive")
	}
	if c.Server.WebSocket.ReadLimit <= 0 {
		return errors.New("server.websocket.read_limit must be positive")
	}
	if c.Server.GRPC.Enabled && c.Server.GRPC.Address == "" {
		return errors.New("server.grpc.address is required when grpc is enabled")
	}
	if c.Server.WebSocket.PingInterval <= 0 {
		return errors.New("server.websocket.ping_interval must be positive")
	}
	if c.Server.MaxGames < 0 {
		return errors.New("server.max_games cannot be negative")
	}
	if c.Server.GameRetention <= 0 {
		return errors.New("server.game_retention must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}

	if _, err := c.Game.Settings(); err != nil {
		return err
	}
	if c.Database.DSN != "" {
		if c.Database.MaxConns <= 0 {
			return errors.New("database.max_conns must be positive")
		}
		if c.Database.ConnectTimeout <= 0 {
			return errors.New("database.connect_timeout must be positive")
		}
	}
	return nil
}

// Settings converts the game section to engine settings
func (c GameConfig) Settings() (game.Settings, error) {
	if c.StartingHandSize <= 0 {
		return game.Settings{}, fmt.Errorf("game.starting_hand_size must be positive, got %d", c.StartingHandSize)
	}
	mode, err := game.ParseAttackMode(c.AttackMode)
	if err != nil {
		return game.Settings{}, fmt.Errorf("game.attack_mode: %w", err)
	}
	flavor, err := cards.ParseFlavor(c.Flavor)
	if err != nil {
		return game.Settings{}, fmt.Errorf("game.flavor: %w", err)
	}
	return game.Settings{
		StartingHandSize: c.StartingHandSize,
		AttackMode:       mode,
		Flavor:           flavor,
	}, nil
}
