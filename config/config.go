package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PASSPORT"

const (
	BackendServer      = "server"
	BackendPassthrough = "passthrough"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	Output   OutputConfig   `mapstructure:"output"`
	Rembg    RembgConfig    `mapstructure:"rembg"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UploadConfig MaxSize 限制文件字节数，MaxPixels 在解码前限制宽*高
type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	MaxPixels    int64    `mapstructure:"max_pixels"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	AllowedExts  []string `mapstructure:"allowed_exts"`
}

// CanvasConfig 纯色背景输出的画布尺寸
type CanvasConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type OutputConfig struct {
	JPEGQuality int  `mapstructure:"jpeg_quality"`
	DPI         int  `mapstructure:"dpi"`
	AutoOrient  bool `mapstructure:"auto_orient"`
}

// RembgConfig 抠图服务
//
//	server:      调用 rembg HTTP 服务 (rembg s)
//	passthrough: 不抠图，原样返回，适合本地调试或已抠好的 PNG
type RembgConfig struct {
	Backend     string        `mapstructure:"backend"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	HealthPath  string        `mapstructure:"health_path"`
	HealthSpec  string        `mapstructure:"health_spec"`
	SkipIfAlpha bool          `mapstructure:"skip_if_alpha"`
}

type PipelineConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
}

// Load 从 YAML 文件加载配置，文件不存在时使用默认值；
// 环境变量 PASSPORT_<SECTION>_<KEY> 覆盖文件中的值
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.max_pixels", 40_000_000)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/jpg"})
	v.SetDefault("upload.allowed_exts", []string{"jpg", "jpeg", "png"})

	v.SetDefault("canvas.width", 1200)
	v.SetDefault("canvas.height", 1200)

	v.SetDefault("output.jpeg_quality", 100)
	v.SetDefault("output.dpi", 300)
	v.SetDefault("output.auto_orient", false)

	v.SetDefault("rembg.backend", BackendServer)
	v.SetDefault("rembg.base_url", "http://localhost:7000")
	v.SetDefault("rembg.model", "u2net")
	v.SetDefault("rembg.timeout", 60*time.Second)
	v.SetDefault("rembg.health_path", "/api")
	v.SetDefault("rembg.health_spec", "@every 30s")
	v.SetDefault("rembg.skip_if_alpha", false)

	v.SetDefault("pipeline.max_concurrent", 2)
	v.SetDefault("pipeline.queue_timeout", 30*time.Second)
}

// Default 与 setDefaults 保持一致
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Upload: UploadConfig{
			MaxSize:      10 * 1024 * 1024,
			MaxPixels:    40_000_000,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/jpg"},
			AllowedExts:  []string{"jpg", "jpeg", "png"},
		},
		Canvas: CanvasConfig{
			Width:  1200,
			Height: 1200,
		},
		Output: OutputConfig{
			JPEGQuality: 100,
			DPI:         300,
		},
		Rembg: RembgConfig{
			Backend:    BackendServer,
			BaseURL:    "http://localhost:7000",
			Model:      "u2net",
			Timeout:    60 * time.Second,
			HealthPath: "/api",
			HealthSpec: "@every 30s",
		},
		Pipeline: PipelineConfig{
			MaxConcurrent: 2,
			QueueTimeout:  30 * time.Second,
		},
	}
}

// Validate 检查配置取值范围
func (c *Config) Validate() error {
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive")
	}
	if c.Upload.MaxPixels <= 0 {
		return fmt.Errorf("upload.max_pixels must be positive")
	}
	if len(c.Upload.AllowedExts) == 0 {
		return fmt.Errorf("upload.allowed_exts cannot be empty")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}
	if c.Output.DPI < 1 || c.Output.DPI > 0xffff {
		return fmt.Errorf("output.dpi must be between 1 and 65535")
	}
	switch c.Rembg.Backend {
	case BackendServer:
		if c.Rembg.BaseURL == "" {
			return fmt.Errorf("rembg.base_url is required for backend %q", BackendServer)
		}
	case BackendPassthrough:
	default:
		return fmt.Errorf("unknown rembg.backend %q", c.Rembg.Backend)
	}
	if c.Pipeline.MaxConcurrent < 1 {
		return fmt.Errorf("pipeline.max_concurrent must be at least 1")
	}
	if c.Pipeline.QueueTimeout <= 0 {
		return fmt.Errorf("pipeline.queue_timeout must be positive")
	}
	return nil
}
