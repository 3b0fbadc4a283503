package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// CloudinaryStore загружает файлы в Cloudinary
type CloudinaryStore struct {
	cld          *cloudinary.Cloudinary
	cfg          config.CloudinaryConfig
	uploadFolder string
	now          func() time.Time
}

// NewCloudinaryStore создает новый экземпляр CloudinaryStore
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Cloudinary: %w", err)
	}
	return &CloudinaryStore{
		cld:          cld,
		cfg:          cfg,
		uploadFolder: cfg.UploadFolder,
		now:          time.Now,
	}, nil
}

// Put загружает изображение и возвращает его HTTPS URL
func (s *CloudinaryStore) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  key,
		Folder:    s.uploadFolder,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в Cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("ошибка загрузки в Cloudinary: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// SignUpload возвращает подписанные параметры для загрузки фото напрямую из клиента
func (s *CloudinaryStore) SignUpload(key string) (map[string]string, error) {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	params := url.Values{}
	params.Set("folder", s.uploadFolder)
	params.Set("public_id", key)
	params.Set("timestamp", timestamp)

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи параметров Cloudinary: %w", err)
	}

	return map[string]string{
		"timestamp":  timestamp,
		"signature":  signature,
		"api_key":    s.cfg.APIKey,
		"cloud_name": s.cfg.CloudName,
		"folder":     s.uploadFolder,
		"public_id":  key,
	}, nil
}
