package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	config "github.com/crosspost-hq/crosspost/configs"
	"github.com/crosspost-hq/crosspost/internal/transfer"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxMediaSize = 100 * 1024 * 1024

// MediaService stores uploaded post media in R2 and hands back the
// public URL later fed to adapters as PostContent.MediaURL.
type MediaService interface {
	Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (string, string, error)
}

type mediaService struct {
	cfg config.Config
}

func NewMediaService(cfg config.Config) MediaService {
	return &mediaService{cfg: cfg}
}

func (s *mediaService) r2Client() (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.cfg.R2.AccessKey, s.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.cfg.R2.AccountID))
	}), nil
}

// Upload sniffs the file's real type, rejects anything that is not an
// image or video, and stores it under a generated key. Returns the
// public URL and the media kind (image|video).
func (s *mediaService) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (string, string, error) {
	if file.Size > maxMediaSize {
		return "", "", errors.New("file exceeds maximum upload size")
	}

	f, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", err
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", "", err
	}

	var mediaType string
	switch {
	case filetype.IsImage(data):
		mediaType = transfer.MediaTypeImage
	case filetype.IsVideo(data):
		mediaType = transfer.MediaTypeVideo
	default:
		return "", "", errors.New("unsupported media type, only images and videos are allowed")
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", "", err
	}
	key := fmt.Sprintf("media/%d/%s.%s", userID, id, kind.Extension)

	client, err := s.r2Client()
	if err != nil {
		return "", "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", "", err
	}

	return fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key), mediaType, nil
}
