package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 CUTOUT_SERVER_ADDR
const EnvPrefix = "CUTOUT"

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Image        ImageConfig        `mapstructure:"image"`
	Segmentation SegmentationConfig `mapstructure:"segmentation"`
	Caption      CaptionConfig      `mapstructure:"caption"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"`
	Workers      int           `mapstructure:"workers"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type ImageConfig struct {
	DefaultWidth  int `mapstructure:"default_width"`
	DefaultHeight int `mapstructure:"default_height"`
	MaxPixels     int `mapstructure:"max_pixels"`
}

type SegmentationConfig struct {
	// Backend 为 "http"（rembg 兼容服务）或 "local"（进程内边缘抠图）
	Backend   string        `mapstructure:"backend"`
	Endpoint  string        `mapstructure:"endpoint"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Tolerance int           `mapstructure:"tolerance"`
	ProbeSpec string        `mapstructure:"probe_spec"`
}

type CaptionConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	Prompt    string        `mapstructure:"prompt"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Load 从 YAML 文件加载配置，configPath 为空时只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 检查配置中不能工作的取值
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}
	if c.Server.Workers <= 0 {
		return errors.New("server.workers must be positive")
	}
	if c.Image.DefaultWidth <= 0 || c.Image.DefaultHeight <= 0 {
		return errors.New("image default size must be positive")
	}
	switch c.Segmentation.Backend {
	case BackendHTTP:
		if c.Segmentation.Endpoint == "" {
			return errors.New("segmentation.endpoint is required for the http backend")
		}
	case BackendLocal:
	default:
		return fmt.Errorf("unknown segmentation backend %q", c.Segmentation.Backend)
	}
	return nil
}

const (
	BackendHTTP  = "http"
	BackendLocal = "local"
)

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.workers", d.Server.Workers)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("image.default_width", d.Image.DefaultWidth)
	v.SetDefault("image.default_height", d.Image.DefaultHeight)
	v.SetDefault("image.max_pixels", d.Image.MaxPixels)

	v.SetDefault("segmentation.backend", d.Segmentation.Backend)
	v.SetDefault("segmentation.endpoint", d.Segmentation.Endpoint)
	v.SetDefault("segmentation.model", d.Segmentation.Model)
	v.SetDefault("segmentation.timeout", d.Segmentation.Timeout)
	v.SetDefault("segmentation.tolerance", d.Segmentation.Tolerance)
	v.SetDefault("segmentation.probe_spec", d.Segmentation.ProbeSpec)

	v.SetDefault("caption.endpoint", d.Caption.Endpoint)
	v.SetDefault("caption.model", d.Caption.Model)
	v.SetDefault("caption.api_key", d.Caption.APIKey)
	v.SetDefault("caption.prompt", d.Caption.Prompt)
	v.SetDefault("caption.max_tokens", d.Caption.MaxTokens)
	v.SetDefault("caption.timeout", d.Caption.Timeout)
}

// Default 默认配置：监听 0.0.0.0:5000，4 个 worker，输出 512x512
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "0.0.0.0:5000",
			Mode:         "release",
			Workers:      4,
			MaxBodyBytes: 32 << 20,
		},
		Image: ImageConfig{
			DefaultWidth:  512,
			DefaultHeight: 512,
			MaxPixels:     64 << 20,
		},
		Segmentation: SegmentationConfig{
			Backend:   BackendLocal,
			Endpoint:  "http://127.0.0.1:7000",
			Model:     "u2net",
			Tolerance: 48,
			ProbeSpec: "@every 1m",
		},
		Caption: CaptionConfig{
			Endpoint:  "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			Prompt:    "Describe this image in one short sentence.",
			MaxTokens: 60,
			Timeout:   2 * time.Minute,
		},
	}
}
