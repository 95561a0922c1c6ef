package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	Env     string
	Storage StorageConfig
}

// StorageConfig selects the durable backend for saved designs. Backend is
// one of "memory", "file", "sqlite", "postgres", "s3"; the zero value falls
// back to a file store under DataDir.
type StorageConfig struct {
	Backend string
	DataDir string
	DSN     string
	S3      S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:    *port,
		Env:     env,
		Storage: loadStorageConfig(env),
	}, nil
}

func loadStorageConfig(env string) StorageConfig {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STUDIO_STORAGE_BACKEND")))
	dsn := strings.TrimSpace(firstNonEmpty(os.Getenv("STUDIO_STORAGE_DSN"), os.Getenv("STUDIO_PG_DSN")))
	if backend == "" {
		switch {
		case dsn != "":
			backend = "postgres"
		case strings.TrimSpace(os.Getenv("STUDIO_S3_ENDPOINT")) != "":
			backend = "s3"
		default:
			backend = "file"
		}
	}
	return StorageConfig{
		Backend: backend,
		DataDir: firstNonEmpty(strings.TrimSpace(os.Getenv("STUDIO_DATA_DIR")), "tmp/studio"),
		DSN:     dsn,
		S3:      loadS3Config(env),
	}
}

func loadS3Config(env string) S3Config {
	return S3Config{
		Endpoint:  strings.TrimSpace(os.Getenv("STUDIO_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("STUDIO_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("STUDIO_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("STUDIO_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("STUDIO_S3_BUCKET")), "redesign-studio-saves"),
		UseSSL:    resolveUseSSL(env),
	}
}

func resolveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("STUDIO_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
