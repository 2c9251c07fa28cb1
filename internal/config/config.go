package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Upload  UploadConfig  `toml:"upload"`
	Session SessionConfig `toml:"session"`
	Display DisplayConfig `toml:"display"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxSizeMB int `toml:"max_size_mb"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	TTLMinutes  int `toml:"ttl_minutes"`  // 0 表示不过期
	MaxSessions int `toml:"max_sessions"` // 0 表示不限制
}

// DisplayConfig 显示配置
type DisplayConfig struct {
	Currency string `toml:"currency"`
}

// envOverrides 环境变量覆盖项，未设置的变量保持零值
// DevMode 保留原始字符串，以便显式的 false 也能覆盖文件配置
type envOverrides struct {
	Port     int    `env:"FRACHTRECHNER_PORT"`
	Currency string `env:"FRACHTRECHNER_CURRENCY"`
	DevMode  string `env:"FRACHTRECHNER_DEV"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			OpenBrowser: true,
		},
		Upload: UploadConfig{
			MaxSizeMB: 10,
		},
		Session: SessionConfig{
			TTLMinutes:  120,
			MaxSessions: 100,
		},
		Display: DisplayConfig{
			Currency: "EUR",
		},
	}
}

// SessionTTL 会话空闲过期时间
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// MaxUploadBytes 上传文件大小上限（字节）
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxSizeMB) * 1024 * 1024
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息
// path 为空时使用可执行文件同目录下的 config.toml；文件不存在时返回默认配置
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, info, err
		}
		data = nil
	}

	if data != nil {
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	// 环境变量覆盖（用于容器 / 本地运行）
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, info, fmt.Errorf("failed to parse env: %w", err)
	}
	if overrides.Port > 0 {
		config.Server.Port = overrides.Port
		info.PortSpecified = true
	}
	if overrides.Currency != "" {
		config.Display.Currency = overrides.Currency
	}
	if overrides.DevMode != "" {
		dev, err := strconv.ParseBool(overrides.DevMode)
		if err != nil {
			return nil, info, fmt.Errorf("failed to parse FRACHTRECHNER_DEV: %w", err)
		}
		config.Server.DevMode = dev
	}

	normalize(config)
	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// normalize 修正非法取值
func normalize(config *AppConfig) {
	defaults := DefaultConfig()
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Upload.MaxSizeMB <= 0 {
		config.Upload.MaxSizeMB = defaults.Upload.MaxSizeMB
	}
	if config.Session.TTLMinutes < 0 {
		config.Session.TTLMinutes = 0
	}
	if config.Session.MaxSessions < 0 {
		config.Session.MaxSessions = 0
	}
	if config.Display.Currency == "" {
		config.Display.Currency = defaults.Display.Currency
	}
}
