package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultConfigFile = "config.yml"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logger    Logger          `mapstructure:"logger"`
	Staging   StagingConfig   `mapstructure:"staging"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
	Render    RenderConfig    `mapstructure:"render"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Storage   StorageConfig   `mapstructure:"storage"`
	S3        S3Config        `mapstructure:"s3"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type ServerConfig struct {
	AppVersion      string        `mapstructure:"app_version"`
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	BodyLimit       string        `mapstructure:"body_limit"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Logger struct {
	Development       bool   `mapstructure:"development"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	Encoding          string `mapstructure:"encoding"`
	Level             string `mapstructure:"level"`
}

// StagingConfig points at the directory holding per-job working files.
type StagingConfig struct {
	Dir string `mapstructure:"dir"`
}

// FetchConfig bounds source downloads. AllowLocal lets file:// URIs and bare
// paths through and is honoured only by one-shot renders.
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	AllowLocal bool          `mapstructure:"allow_local"`
}

type NormalizeConfig struct {
	MogrifyPath string `mapstructure:"mogrify_path"`
}

type RenderConfig struct {
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
	Width       int           `mapstructure:"width"`
	Height      int           `mapstructure:"height"`
	Background  string        `mapstructure:"background"`
	FrameRate   int           `mapstructure:"fps"`
	VideoCodec  string        `mapstructure:"video_codec"`
	PixelFormat string        `mapstructure:"pixel_format"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type WorkerConfig struct {
	MaxConcurrentRenders int           `mapstructure:"max_concurrent_renders"`
	MaxCPUUsage          float64       `mapstructure:"max_cpu_usage"`
	CPUCheckInterval     time.Duration `mapstructure:"cpu_check_interval"`
}

// StorageConfig selects the artifact store. Driver is "s3" or "minio".
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"`
	Prefix        string        `mapstructure:"prefix"`
	URLExpiry     time.Duration `mapstructure:"url_expiry"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
}

type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	DB            int    `mapstructure:"db"`
	UseTLS        bool   `mapstructure:"use_tls"`
	MinIdleConns  int    `mapstructure:"min_idle_conns"`
	PoolSize      int    `mapstructure:"pool_size"`
	PoolTimeout   int    `mapstructure:"pool_timeout"`
	Channel       string `mapstructure:"channel"`
}

// LoadConfig builds a viper instance from defaults, an optional .env file,
// the environment and, when it exists, the yaml file at filename.
func LoadConfig(filename string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename == "" {
		return v, nil
	}
	if _, err := os.Stat(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) && filename == DefaultConfigFile {
			return v, nil
		}
		return nil, errors.New("config file not found: " + filename)
	}

	v.SetConfigFile(filename)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("render.width and render.height must be positive")
	}
	if c.Render.FrameRate <= 0 {
		return errors.New("render.fps must be positive")
	}
	if c.Staging.Dir == "" {
		return errors.New("staging.dir is empty")
	}
	switch c.Storage.Driver {
	case "s3", "minio":
	default:
		return errors.New("storage.driver must be one of s3, minio")
	}
	if c.Worker.MaxConcurrentRenders <= 0 {
		c.Worker.MaxConcurrentRenders = 1
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "dev")
	v.SetDefault("server.port", ":3001")
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.body_limit", "2M")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logger.development", false)
	v.SetDefault("logger.disable_caller", false)
	v.SetDefault("logger.disable_stacktrace", true)
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.level", "info")

	v.SetDefault("staging.dir", "tmp_jobs")
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.allow_local", false)
	v.SetDefault("normalize.mogrify_path", "mogrify")

	v.SetDefault("render.ffmpeg_path", "ffmpeg")
	v.SetDefault("render.width", 1920)
	v.SetDefault("render.height", 1080)
	v.SetDefault("render.background", "black")
	v.SetDefault("render.fps", 30)
	v.SetDefault("render.video_codec", "libx264")
	v.SetDefault("render.pixel_format", "yuv420p")
	v.SetDefault("render.timeout", 10*time.Minute)

	v.SetDefault("worker.max_concurrent_renders", 2)
	v.SetDefault("worker.max_cpu_usage", 0)
	v.SetDefault("worker.cpu_check_interval", 2*time.Second)

	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.prefix", "videos")
	v.SetDefault("storage.url_expiry", 7*24*time.Hour)
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "")

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.redis_addr", ":6379")
	v.SetDefault("redis.redis_password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.use_tls", false)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.pool_timeout", 5)
	v.SetDefault("redis.channel", "slideshow:status")
}
