package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config структура конфигурации
type Config struct {
	Port      string        `envconfig:"PORT" default:"8080"`
	AppEnv    string        `envconfig:"APP_ENV" default:"production"`
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	// Хранилище: postgres или sqlite
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/skillswap.db"`

	PGHost     string `envconfig:"PGHOST" default:"localhost"`
	PGPort     string `envconfig:"PGPORT" default:"5432"`
	PGUser     string `envconfig:"PGUSER" default:"skillswap"`
	PGPassword string `envconfig:"PGPASSWORD" default:"skillswap"`
	PGDatabase string `envconfig:"PGDATABASE" default:"skillswap"`
	PGSSLMode  string `envconfig:"PGSSLMODE" default:"disable"`

	RedisURL    string `envconfig:"REDIS_URL"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Хранилище файлов: cloudinary, s3 или none
	BlobBackend    string `envconfig:"BLOB_BACKEND" default:"none"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	CloudinaryConfig CloudinaryConfig `ignored:"true"`
	S3Config         S3Config         `ignored:"true"`

	CloudName    string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudKey     string `envconfig:"CLOUDINARY_API_KEY"`
	CloudSecret  string `envconfig:"CLOUDINARY_API_SECRET"`
	UploadFolder string `envconfig:"CLOUDINARY_UPLOAD_FOLDER" default:"skillswap/avatars"`

	AWSBucketName string `envconfig:"AWS_BUCKET_NAME"`
	AWSRegion     string `envconfig:"AWS_REGION"`
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// S3Config содержит конфигурацию для S3
type S3Config struct {
	Bucket string
	Region string
}

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	// Отсутствие .env не ошибка: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	// Формируем строку подключения к базе данных, если она не задана целиком
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDatabase, cfg.PGSSLMode)
	}

	cfg.CloudinaryConfig = CloudinaryConfig{
		CloudName:    cfg.CloudName,
		APIKey:       cfg.CloudKey,
		APISecret:    cfg.CloudSecret,
		UploadFolder: cfg.UploadFolder,
	}
	cfg.S3Config = S3Config{
		Bucket: cfg.AWSBucketName,
		Region: cfg.AWSRegion,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("неизвестный DB_DRIVER %q", c.DBDriver)
	}

	switch c.BlobBackend {
	case "none":
	case "cloudinary":
		if c.CloudName == "" || c.CloudKey == "" || c.CloudSecret == "" {
			return fmt.Errorf("для BLOB_BACKEND=cloudinary нужны CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY и CLOUDINARY_API_SECRET")
		}
	case "s3":
		if c.AWSBucketName == "" || c.AWSRegion == "" {
			return fmt.Errorf("для BLOB_BACKEND=s3 нужны AWS_BUCKET_NAME и AWS_REGION")
		}
	default:
		return fmt.Errorf("неизвестный BLOB_BACKEND %q", c.BlobBackend)
	}
	return nil
}

// IsDevelopment сообщает, что приложение запущено в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AllowedOrigins возвращает список разрешённых CORS-источников
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
