package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int      `yaml:"port"`
		Mode            string   `yaml:"mode"` // gin mode: debug, release, test
		AllowedOrigins  []string `yaml:"allowedOrigins"`
		MaxUploadSizeMB int      `yaml:"maxUploadSizeMB"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // Token expiry in minutes
	} `yaml:"jwt"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or text
	} `yaml:"log"`

	Openai struct {
		GptApiKey string   `yaml:"gptApiKey"`
		BaseURL   string   `yaml:"baseURL"`
		Models    []string `yaml:"models"`
	} `yaml:"openai"`

	Gemini struct {
		ApiKey     string   `yaml:"apiKey"`
		Models     []string `yaml:"models"`
		ImageModel string   `yaml:"imageModel"`
	} `yaml:"gemini"`

	Anthropic struct {
		ApiKey string   `yaml:"apiKey"`
		Models []string `yaml:"models"`
	} `yaml:"anthropic"`

	Generation struct {
		Provider       string        `yaml:"provider"` // gemini, anthropic, openai
		Model          string        `yaml:"model"`
		MaxAttempts    int           `yaml:"maxAttempts"`
		InitialBackoff time.Duration `yaml:"initialBackoff"`
		BackoffFactor  float64       `yaml:"backoffFactor"`
		Timeout        time.Duration `yaml:"timeout"`
		RateLimit      struct {
			Window      time.Duration `yaml:"window"`
			MaxRequests int           `yaml:"maxRequests"`
		} `yaml:"rateLimit"`
	} `yaml:"generation"`

	Storage struct {
		Endpoint        string `yaml:"endpoint"` // empty for AWS S3, set for R2 or MinIO
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		AccessKeyID     string `yaml:"accessKeyId"`
		SecretAccessKey string `yaml:"secretAccessKey"`
		PublicBaseURL   string `yaml:"publicBaseURL"`
	} `yaml:"storage"`

	PersonaForm struct {
		Path      string `yaml:"path"`
		DevReload bool   `yaml:"devReload"`
	} `yaml:"personaForm"`

	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"serviceName"`
	} `yaml:"tracing"`
}

// LoadConfig reads the configuration file, applies environment overrides and
// fills defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig without the file read.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Generation.Provider {
	case "gemini", "anthropic", "openai":
	default:
		return fmt.Errorf("unknown generation.provider %q", c.Generation.Provider)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.URI, "MONGO_URI")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Gemini.ApiKey, "GEMINI_API_KEY")
	setString(&cfg.Anthropic.ApiKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Openai.GptApiKey, "OPENAI_API_KEY")
	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.Region, "S3_REGION")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.PublicBaseURL, "S3_PUBLIC_BASE_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PERSONA_FORM_DEV_RELOAD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PersonaForm.DevReload = b
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 1313
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Server.MaxUploadSizeMB == 0 {
		cfg.Server.MaxUploadSizeMB = 10
	}
	if cfg.JWT.Expiry == 0 {
		cfg.JWT.Expiry = 1440
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Openai.BaseURL == "" {
		cfg.Openai.BaseURL = "https://api.openai.com/v1"
	}
	if len(cfg.Openai.Models) == 0 {
		cfg.Openai.Models = []string{"gpt-4o", "gpt-4o-mini"}
	}
	if len(cfg.Gemini.Models) == 0 {
		cfg.Gemini.Models = []string{"gemini-2.5-flash", "gemini-2.5-pro"}
	}
	if cfg.Gemini.ImageModel == "" {
		cfg.Gemini.ImageModel = "imagen-3.0-generate-002"
	}
	if len(cfg.Anthropic.Models) == 0 {
		cfg.Anthropic.Models = []string{"claude-sonnet-4-5", "claude-haiku-4-5"}
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "gemini"
	}
	if cfg.Generation.Model == "" {
		switch cfg.Generation.Provider {
		case "anthropic":
			cfg.Generation.Model = cfg.Anthropic.Models[0]
		case "openai":
			cfg.Generation.Model = cfg.Openai.Models[0]
		default:
			cfg.Generation.Model = cfg.Gemini.Models[0]
		}
	}
	if cfg.Generation.MaxAttempts == 0 {
		cfg.Generation.MaxAttempts = 3
	}
	if cfg.Generation.InitialBackoff == 0 {
		cfg.Generation.InitialBackoff = 2 * time.Second
	}
	if cfg.Generation.BackoffFactor == 0 {
		cfg.Generation.BackoffFactor = 2
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 3 * time.Minute
	}
	if cfg.Generation.RateLimit.Window == 0 {
		cfg.Generation.RateLimit.Window = time.Minute
	}
	if cfg.Generation.RateLimit.MaxRequests == 0 {
		cfg.Generation.RateLimit.MaxRequests = 10
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "auto"
	}
	if cfg.PersonaForm.Path == "" {
		cfg.PersonaForm.Path = "./config/persona-form.yml"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "voxarena"
	}
}
