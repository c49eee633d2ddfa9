package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dropDatabas3/userhub/internal/domain"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// S3Config datos del bucket de avatares.
type S3Config struct {
	Endpoint     string // vacío => AWS
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicURL    string // base pública de los objetos; vacío => derivada
	UsePathStyle bool   // MinIO
	Folder       string
	MaxBytes     int64
}

// objectAPI es el subconjunto de *s3.Client que usamos.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Host struct {
	cfg S3Config
	api objectAPI
}

// NewS3Host arma el cliente S3 con credenciales estáticas.
func NewS3Host(ctx context.Context, cfg S3Config) (*S3Host, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Host(cfg, client), nil
}

func newS3Host(cfg S3Config, api objectAPI) *S3Host {
	if cfg.Folder == "" {
		cfg.Folder = "avatars"
	}
	return &S3Host{cfg: cfg, api: api}
}

func (h *S3Host) Upload(ctx context.Context, image string) (domain.Avatar, error) {
	if isRemoteURL(image) {
		// ya hosteada afuera: guardamos la referencia sin public id
		return domain.Avatar{URL: image}, nil
	}
	raw, ct, ext, err := decodeImage(image, h.cfg.MaxBytes)
	if err != nil {
		return domain.Avatar{}, err
	}

	key := fmt.Sprintf("%s/%s.%s", strings.Trim(h.cfg.Folder, "/"), uuid.NewString(), ext)
	_, err = h.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(raw),
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(int64(len(raw))),
	})
	if err != nil {
		return domain.Avatar{}, fmt.Errorf("media: put object: %w", err)
	}

	logger.From(ctx).Debug("avatar uploaded",
		logger.Component("media"),
		logger.String("key", key),
		logger.Int("bytes", len(raw)),
	)
	return domain.Avatar{PublicID: key, URL: h.objectURL(key)}, nil
}

func (h *S3Host) Validate(image string) error {
	if isRemoteURL(image) {
		return nil
	}
	_, _, _, err := decodeImage(image, h.cfg.MaxBytes)
	return err
}

func (h *S3Host) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := h.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.cfg.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("media: delete object: %w", err)
	}
	return nil
}

func (h *S3Host) objectURL(key string) string {
	if h.cfg.PublicURL != "" {
		return strings.TrimRight(h.cfg.PublicURL, "/") + "/" + key
	}
	if h.cfg.Endpoint != "" {
		base := strings.TrimRight(h.cfg.Endpoint, "/")
		if h.cfg.UsePathStyle {
			return base + "/" + h.cfg.Bucket + "/" + key
		}
		if i := strings.Index(base, "://"); i >= 0 {
			return base[:i+3] + h.cfg.Bucket + "." + base[i+3:] + "/" + key
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.cfg.Bucket, h.cfg.Region, key)
}
