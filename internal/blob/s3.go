package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// S3Store загружает файлы в бакет S3
type S3Store struct {
	s3Client   *s3.Client
	bucketName string
	region     string
}

// NewS3Store создаёт клиента S3 из стандартной цепочки учётных данных AWS
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации AWS: %w", err)
	}
	return &S3Store{
		s3Client:   s3.NewFromConfig(awsCfg),
		bucketName: cfg.Bucket,
		region:     cfg.Region,
	}, nil
}

// Put сохраняет объект и возвращает его URL
func (s *S3Store) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if key == "" {
		return "", fmt.Errorf("ключ объекта не может быть пустым")
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в S3: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *S3Store) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, (&url.URL{Path: key}).EscapedPath())
}
