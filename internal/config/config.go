package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Configuration is the root application config, populated from
// environment variables (optionally via a local .env file).
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" default:"api"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" default:"localhost"`
	Port                   int    `mapstructure:"port" default:"5432"`
	User                   string `mapstructure:"user" default:"courselane"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" default:"courselane"`
	SSLMode                string `mapstructure:"sslmode" default:"disable"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"20"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"30"`
	AutoMigrate            bool   `mapstructure:"auto_migrate" default:"false"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" default:"info"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NewConfig loads the configuration from the environment. A missing
// .env file is not an error; explicit env always wins.
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COURSELANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration from environment").
			Mark(ierr.ErrValidation)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.RunModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "courselane")
	v.SetDefault("postgres.dbname", "courselane")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("postgres.auto_migrate", false)
	v.SetDefault("logging.level", string(types.LogLevelInfo))
}

func (c *Configuration) Validate() error {
	if c.Server.Address == "" {
		return ierr.NewError("server address is required").
			WithHint("Set COURSELANE_SERVER_ADDRESS").
			Mark(ierr.ErrValidation)
	}
	if c.Postgres.Host == "" || c.Postgres.DBName == "" {
		return ierr.NewError("postgres host and dbname are required").
			WithHint("Set COURSELANE_POSTGRES_HOST and COURSELANE_POSTGRES_DBNAME").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DSN builds the postgres connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetDefaultConfig returns a config suitable for tests and scripts
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.RunModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "courselane",
			DBName:  "courselane_test",
			SSLMode: "disable",
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
	}
}
