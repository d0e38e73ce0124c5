package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backend identifiers accepted in storage.type.
const (
	StorageLocal    = "local"
	StorageS3       = "s3"
	StoragePostgres = "postgres"
)

// Config holds the configuration for the service.
type Config struct {
	Service struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
	} `mapstructure:"service"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
	Storage struct {
		Type string `mapstructure:"type"`
		Dir  string `mapstructure:"dir"`
		S3   struct {
			Bucket    string `mapstructure:"bucket"`
			Region    string `mapstructure:"region"`
			Endpoint  string `mapstructure:"endpoint"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
		} `mapstructure:"s3"`
		DB struct {
			Host     string `mapstructure:"host"`
			Port     int    `mapstructure:"port"`
			User     string `mapstructure:"user"`
			Password string `mapstructure:"password"`
			Name     string `mapstructure:"name"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"db"`
	} `mapstructure:"storage"`
}

// LoadConfig loads the configuration from a yaml file and the environment.
// A missing config file is not an error: the platform configures fitted
// services entirely through MLP_* environment variables.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetDefault("service.name", "fit-action-example")
	viper.SetDefault("service.version", "1.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("storage.type", StorageLocal)
	viper.SetDefault("storage.dir", "./data")
	viper.SetDefault("storage.db.port", 5432)
	viper.SetDefault("storage.db.sslmode", "disable")

	viper.SetEnvPrefix("MLP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindPlatformEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindPlatformEnv maps the environment variable names the hosting platform
// injects onto config keys. The names predate this service and do not follow
// the MLP_<section>_<key> convention, so they are bound explicitly.
func bindPlatformEnv() {
	viper.BindEnv("storage.type", "MLP_STORAGE_TYPE")
	viper.BindEnv("storage.dir", "MLP_STORAGE_DIR")
	viper.BindEnv("storage.s3.bucket", "MLP_S3_BUCKET")
	viper.BindEnv("storage.s3.region", "MLP_S3_REGION")
	viper.BindEnv("storage.s3.endpoint", "MLP_S3_ENDPOINT")
	viper.BindEnv("storage.s3.access_key", "MLP_S3_ACCESS_KEY")
	viper.BindEnv("storage.s3.secret_key", "MLP_S3_SECRET_KEY")
}

func validate(cfg *Config) error {
	switch cfg.Storage.Type {
	case StorageLocal:
		if cfg.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for %s storage", StorageLocal)
		}
	case StorageS3:
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for %s storage", StorageS3)
		}
	case StoragePostgres:
		if cfg.Storage.DB.Host == "" || cfg.Storage.DB.Name == "" {
			return fmt.Errorf("storage.db.host and storage.db.name are required for %s storage", StoragePostgres)
		}
	default:
		return fmt.Errorf("storage.type %q is invalid", cfg.Storage.Type)
	}
	return nil
}
