package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Pool      PoolConfig
	Compute   ComputeConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

// PoolConfig tunes the job scheduler. Size 0 derives the unit count
// from the hardware capability record at startup.
type PoolConfig struct {
	Size          int
	MaxQueueDepth int
	IdleTimeout   time.Duration
	WarmupOnLoad  bool
}

// ComputeConfig tunes the engines.
type ComputeConfig struct {
	MaxNativeElements int    // native backend grid cap, in samples
	MaxImageDimension int    // decode cap per axis
	DefaultBackend    string // auto | native | portable
}

type RateLimitConfig struct {
	SubmitPerMin int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("pool.size", 0) // 0 = hardware parallelism - 1
	viper.SetDefault("pool.max_queue_depth", 32)
	viper.SetDefault("pool.idle_timeout_ms", 30000)
	viper.SetDefault("pool.warmup_on_load", false)
	viper.SetDefault("compute.max_native_elements", 4194304)
	viper.SetDefault("compute.max_image_dimension", 1024)
	viper.SetDefault("compute.default_backend", "auto")
	viper.SetDefault("ratelimit.submit_per_min", 60)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		Pool: PoolConfig{
			Size:          viper.GetInt("pool.size"),
			MaxQueueDepth: viper.GetInt("pool.max_queue_depth"),
			IdleTimeout:   time.Duration(viper.GetInt("pool.idle_timeout_ms")) * time.Millisecond,
			WarmupOnLoad:  viper.GetBool("pool.warmup_on_load"),
		},
		Compute: ComputeConfig{
			MaxNativeElements: viper.GetInt("compute.max_native_elements"),
			MaxImageDimension: viper.GetInt("compute.max_image_dimension"),
			DefaultBackend:    viper.GetString("compute.default_backend"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerMin: viper.GetInt("ratelimit.submit_per_min"),
		},
	}

	return cfg, nil
}
