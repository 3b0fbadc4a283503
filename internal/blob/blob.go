// Package blob хранит загруженные файлы (фотографии профилей) во внешнем хранилище.
package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// Store сохраняет файл под ключом и возвращает его публичный URL
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// UploadSigner выдаёт параметры для прямой загрузки файла клиентом
type UploadSigner interface {
	SignUpload(key string) (map[string]string, error)
}

// New создаёт хранилище по BLOB_BACKEND. Для "none" возвращает nil без ошибки.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case "cloudinary":
		return NewCloudinaryStore(cfg.CloudinaryConfig)
	case "s3":
		return NewS3Store(ctx, cfg.S3Config)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("неизвестный BLOB_BACKEND %q", cfg.BlobBackend)
	}
}
