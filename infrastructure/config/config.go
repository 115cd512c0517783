package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT" validate:"oneof=development production test"`

	// Server configuration
	Port          int    `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	ServerAddress string `yaml:"server_address" env:"SERVER_ADDRESS"`
	Server        Server `yaml:"server"`

	Storage Storage `yaml:"storage"`
	Auth    Auth    `yaml:"auth"`

	// Logging
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics bool     `yaml:"enable_metrics" env:"ENABLE_METRICS"`
	EnableTracing bool     `yaml:"enable_tracing" env:"ENABLE_TRACING"`
	OTLPEndpoint  string   `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	EnableCORS    bool     `yaml:"enable_cors" env:"ENABLE_CORS"`
	CORSOrigins   []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// Server holds HTTP server limits
type Server struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" validate:"gt=0"`
}

// Storage selects and configures the tree store
type Storage struct {
	Backend  string `yaml:"backend" env:"STORE_BACKEND" validate:"oneof=file dynamodb"`
	DataDir  string `yaml:"data_dir" env:"DATA_DIR" validate:"required_if=Backend file"`
	FileName string `yaml:"file_name" env:"TREE_FILE" validate:"required_if=Backend file"`
	SeedPath string `yaml:"seed_path" env:"SEED_PATH"`
	Watch    bool   `yaml:"watch" env:"WATCH_STORE"`

	DynamoDBTable string `yaml:"dynamodb_table" env:"DYNAMODB_TABLE" validate:"required_if=Backend dynamodb"`
	AWSRegion     string `yaml:"aws_region" env:"AWS_REGION"`
	TreeName      string `yaml:"tree_name" env:"TREE_NAME" validate:"required"`
}

// Auth configures the bearer token gate. An empty Secret disables it.
type Auth struct {
	Secret        string        `yaml:"secret" env:"AUTH_SECRET"`
	Scheme        string        `yaml:"scheme" env:"AUTH_SCHEME" validate:"oneof=opaque jwt"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" validate:"gte=0"`
	LoginAttempts int           `yaml:"login_attempts" env:"LOGIN_ATTEMPTS" validate:"gt=0"`
	LoginWindow   time.Duration `yaml:"login_window" env:"LOGIN_WINDOW" validate:"gt=0"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Environment: "development",
		Port:        5175,
		Server: Server{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    2 << 20,
		},
		Storage: Storage{
			Backend:  "file",
			DataDir:  "/data",
			FileName: "tree.json",
			SeedPath: "./tree.json",
			Watch:    true,
			TreeName: "default",
		},
		Auth: Auth{
			Scheme:        "opaque",
			LoginAttempts: 10,
			LoginWindow:   time.Minute,
		},
		LogLevel:      "info",
		EnableMetrics: true,
		EnableCORS:    true,
		CORSOrigins:   []string{"*"},
	}
}

// LoadConfig loads configuration from the optional file named by CONFIG_FILE
// and then from environment variables.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load layers configuration: defaults, then the YAML file at path (if path is
// not empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.IsProduction() && c.Auth.Secret == "" {
		return errors.New("AUTH_SECRET is required in production")
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	if c.ServerAddress != "" {
		return c.ServerAddress
	}
	return fmt.Sprintf(":%d", c.Port)
}

// AuthEnabled reports whether the bearer token gate is on.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
