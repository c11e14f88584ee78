// Package config loads creatorhub settings from defaults, an optional TOML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvConfigPath names the variable consulted when no --config flag is given.
const EnvConfigPath = "CREATORHUB_CONFIG"

type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	JWTSecret      string   `toml:"jwt_secret"`
	AppID          string   `toml:"app_id"`
}

type Database struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

// DSN returns a postgres:// connection URL.
func (d Database) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type Gemini struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TextModel      string `toml:"text_model"`
	ImageModel     string `toml:"image_model"`
	SpeechModel    string `toml:"speech_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxAttempts    int    `toml:"max_attempts"`
}

// Timeout is the per-attempt HTTP timeout.
func (g Gemini) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type Hub struct {
	SaveIntervalSeconds int `toml:"save_interval_seconds"`
}

func (h Hub) SaveInterval() time.Duration {
	return time.Duration(h.SaveIntervalSeconds) * time.Second
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Gemini   Gemini   `toml:"gemini"`
	Hub      Hub      `toml:"hub"`
	Logging  Logging  `toml:"logging"`
}

// Default returns a configuration that only lacks secrets.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			AppID:          "default-app-id",
		},
		Database: Database{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "creatorhub",
			SSLMode: "require",
		},
		Gemini: Gemini{
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			TextModel:      "gemini-2.5-flash-preview-05-20",
			ImageModel:     "imagen-3.0-generate-002",
			SpeechModel:    "gemini-2.5-flash-preview-tts",
			TimeoutSeconds: 120,
			MaxAttempts:    5,
		},
		Hub:     Hub{SaveIntervalSeconds: 5},
		Logging: Logging{Level: "info", Format: "auto"},
	}
}

// Load builds the configuration. path may be empty, in which case
// CREATORHUB_CONFIG is used; a missing file is only an error when a path
// was named explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables. Database variable names follow
// the hosting provider's connection panel.
func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "ADDR")
	setString(&c.Server.JWTSecret, "SUPABASE_JWT_SECRET")
	setString(&c.Server.AppID, "APP_ID")
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Database.Host, "host")
	setString(&c.Database.User, "user")
	setString(&c.Database.Password, "password")
	setString(&c.Database.Name, "dbname")
	setString(&c.Database.SSLMode, "sslmode")
	if err := setInt(&c.Database.Port, "port"); err != nil {
		return err
	}

	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.BaseURL, "GEMINI_BASE_URL")
	setString(&c.Gemini.TextModel, "GEMINI_TEXT_MODEL")
	setString(&c.Gemini.ImageModel, "GEMINI_IMAGE_MODEL")
	setString(&c.Gemini.SpeechModel, "GEMINI_SPEECH_MODEL")
	if err := setInt(&c.Gemini.TimeoutSeconds, "GEMINI_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	if err := setInt(&c.Gemini.MaxAttempts, "GEMINI_MAX_ATTEMPTS"); err != nil {
		return err
	}

	if err := setInt(&c.Hub.SaveIntervalSeconds, "HUB_SAVE_INTERVAL_SECONDS"); err != nil {
		return err
	}
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	return nil
}

// Validate reports the first setting that would stop the server from working.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.JWTSecret == "" {
		return errors.New("server.jwt_secret is required (set SUPABASE_JWT_SECRET)")
	}
	if err := c.ValidateGemini(); err != nil {
		return err
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return errors.New("database.host and database.name must be set")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port %d out of range", c.Database.Port)
	}
	if c.Hub.SaveIntervalSeconds <= 0 {
		return errors.New("hub.save_interval_seconds must be positive")
	}
	switch c.Logging.Format {
	case "auto", "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be auto, json or console", c.Logging.Format)
	}
	return nil
}

// ValidateGemini checks only what the AI client needs; the CLI uses it for
// commands that never touch the database.
func (c *Config) ValidateGemini() error {
	if c.Gemini.APIKey == "" {
		return errors.New("gemini.api_key is required (set GEMINI_API_KEY)")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return errors.New("gemini.timeout_seconds must be positive")
	}
	if c.Gemini.MaxAttempts < 1 {
		return errors.New("gemini.max_attempts must be at least 1")
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
