package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gcclean/trash-service/internal/model"
)

const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type StorageConfig struct {
	Driver        string
	LocalDir      string
	PublicBaseURL string
	Cloudinary    CloudinaryConfig
}

type TrashConfig struct {
	MaxPhotos        int
	PhotoMaxSide     int
	CleanupOnFailure bool
	Departments      []string
}

type Config struct {
	Environment  string
	RollbarToken string
	HTTP         HTTPConfig
	DB           DBConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Trash        TrashConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("TRASH_MAX_PHOTOS", 10)
	v.SetDefault("TRASH_PHOTO_MAX_SIDE", 1600)
	v.SetDefault("TRASH_CLEANUP_ON_FAILURE", true)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment:  v.GetString("APP_ENV"),
		RollbarToken: v.GetString("ROLLBAR_TOKEN"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			LocalDir:      v.GetString("STORAGE_LOCAL_DIR"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
			Cloudinary: CloudinaryConfig{
				CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
				APIKey:    v.GetString("CLOUDINARY_API_KEY"),
				APISecret: v.GetString("CLOUDINARY_API_SECRET"),
				Folder:    v.GetString("CLOUDINARY_FOLDER"),
			},
		},
		Trash: TrashConfig{
			MaxPhotos:        v.GetInt("TRASH_MAX_PHOTOS"),
			PhotoMaxSide:     v.GetInt("TRASH_PHOTO_MAX_SIDE"),
			CleanupOnFailure: v.GetBool("TRASH_CLEANUP_ON_FAILURE"),
			Departments:      parseList(v.GetString("DEPARTMENTS")),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverLocal
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./uploads"
	}
	if cfg.Storage.PublicBaseURL == "" {
		cfg.Storage.PublicBaseURL = fmt.Sprintf("http://localhost:%d/media", cfg.HTTP.Port)
	}
	if cfg.Storage.Cloudinary.Folder == "" {
		cfg.Storage.Cloudinary.Folder = "gc-clean"
	}
	if cfg.Trash.MaxPhotos <= 0 {
		cfg.Trash.MaxPhotos = 10
	}
	if cfg.Trash.PhotoMaxSide < 0 {
		cfg.Trash.PhotoMaxSide = 0
	}
	if len(cfg.Trash.Departments) == 0 {
		cfg.Trash.Departments = append([]string{}, model.DefaultDepartments...)
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverCloudinary:
		c := cfg.Storage.Cloudinary
		if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for the cloudinary driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDepartment reports whether code is one of the configured units.
func (c *Config) HasDepartment(code string) bool {
	for _, d := range c.Trash.Departments {
		if d == code {
			return true
		}
	}
	return false
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
