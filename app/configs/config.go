package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	Server ServerConfig `json:"server"`
	Auth   AuthConfig   `json:"auth"`
	AI     AIConfig     `json:"ai"`
}

type ServerConfig struct {
	Port int `json:"port"`
}

type AuthConfig struct {
	Secret          string `json:"secret"`
	TokenTTLMinutes int    `json:"token_ttl_minutes"`
}

type AIConfig struct {
	DefaultProvider   string `json:"default_provider"`
	OpenAIKey         string `json:"openai_key"`
	OpenAIModel       string `json:"openai_model"`
	GeminiKey         string `json:"gemini_key"`
	GeminiModel       string `json:"gemini_model"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	mgr.applyEnv()
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

// applyEnv lets deployment secrets override whatever the config file holds.
func (m *Manager) applyEnv() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		m.cfg.AI.OpenAIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		m.cfg.AI.GeminiKey = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		m.cfg.Auth.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			m.cfg.Server.Port = port
		}
	}
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-key",
			TokenTTLMinutes: 60 * 24,
		},
		AI: AIConfig{
			DefaultProvider:   "openai",
			OpenAIModel:       "gpt-3.5-turbo",
			GeminiModel:       "gemini-1.5-flash",
			RequestTimeoutSec: 30,
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		cfg.Auth.Secret = "dev-secret-key"
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 60 * 24
	}
	if strings.TrimSpace(cfg.AI.DefaultProvider) == "" {
		cfg.AI.DefaultProvider = "openai"
	}
	if strings.TrimSpace(cfg.AI.OpenAIModel) == "" {
		cfg.AI.OpenAIModel = "gpt-3.5-turbo"
	}
	if strings.TrimSpace(cfg.AI.GeminiModel) == "" {
		cfg.AI.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.AI.RequestTimeoutSec <= 0 {
		cfg.AI.RequestTimeoutSec = 30
	}
}
