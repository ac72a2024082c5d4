// Package config handles daemon configuration loading. Settings come
// from an optional YAML file layered over defaults; secrets (API keys)
// come from the environment and are read in main.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ray/internal/feature"
)

// Config holds everything the daemon needs beyond its secrets.
type Config struct {
	// Assistant is the wake/address name stripped from utterances.
	Assistant string `yaml:"assistant"`

	Shell   ShellConfig   `yaml:"shell"`
	Chat    ChatConfig    `yaml:"chat"`
	Voice   VoiceConfig   `yaml:"voice"`
	Weather WeatherConfig `yaml:"weather"`
	YouTube YouTubeConfig `yaml:"youtube"`

	SMTP   feature.SMTPConfig   `yaml:"smtp"`
	Twilio feature.TwilioConfig `yaml:"twilio"`

	// Resolver overrides. Empty maps keep the built-in tables.
	Apps       map[string][]string `yaml:"apps"`
	Websites   map[string]string   `yaml:"websites"`
	SearchDirs []string            `yaml:"search_dirs"`

	SocketPath string `yaml:"socket_path"`
	LogLevel   string `yaml:"log_level"`
}

type ShellConfig struct {
	// Addr is the websocket bind address for the graphical shell.
	Addr string `yaml:"addr"`
}

type ChatConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// Proxy is an optional SOCKS5 address for the chat backend.
	Proxy string `yaml:"proxy"`
}

type VoiceConfig struct {
	// WhisperModel is the path to a ggml model file. Empty disables the
	// microphone; text turns still work.
	WhisperModel string `yaml:"whisper_model"`
	Language     string `yaml:"language"`
	ChimePath    string `yaml:"chime_path"`
}

type WeatherConfig struct {
	APIKey string `yaml:"api_key"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key"`
}

func defaults() Config {
	return Config{
		Assistant: "ray",
		Shell:     ShellConfig{Addr: "127.0.0.1:8765"},
		Chat: ChatConfig{
			Model: "gpt-4o-mini",
		},
		Voice: VoiceConfig{
			Language:  "en",
			ChimePath: "chime.mp3",
		},
		SocketPath: "/tmp/ray.sock",
		LogLevel:   "info",
	}
}

// DefaultSearchPaths returns the config file search order when no
// explicit path is given.
func DefaultSearchPaths() []string {
	paths := []string{"ray.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ray", "config.yaml"))
	}
	return append(paths, "/etc/ray/config.yaml")
}

// Load reads the config at path layered over defaults. An empty path
// searches DefaultSearchPaths; a daemon with no config file at all runs
// on pure defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		for _, p := range DefaultSearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
