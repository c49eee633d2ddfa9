// Package media aloja las imágenes de avatar en un object storage
// compatible con S3 (AWS o MinIO).
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dropDatabas3/userhub/internal/domain"
)

var (
	ErrNotConfigured = errors.New("media: avatar host not configured")
	ErrInvalidImage  = errors.New("media: invalid image payload")
	ErrTooLarge      = errors.New("media: image too large")
)

// AvatarHost sube y borra imágenes de perfil.
type AvatarHost interface {
	// Upload recibe un data URI (data:image/png;base64,...), base64 pelado
	// o una URL http(s) externa.
	Upload(ctx context.Context, image string) (domain.Avatar, error)
	// Validate chequea el payload sin tocar el storage.
	Validate(image string) error
	// Delete borra por public id. Ids vacíos se ignoran.
	Delete(ctx context.Context, publicID string) error
}

// Disabled es el host cuando no hay bucket configurado.
type Disabled struct{}

func (Disabled) Upload(context.Context, string) (domain.Avatar, error) {
	return domain.Avatar{}, ErrNotConfigured
}

func (Disabled) Validate(string) error { return ErrNotConfigured }

func (Disabled) Delete(context.Context, string) error { return nil }

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// decodeImage devuelve bytes, content-type y extensión.
func decodeImage(image string, maxBytes int64) ([]byte, string, string, error) {
	payload := strings.TrimSpace(image)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, "", "", ErrInvalidImage
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, "", "", ErrInvalidImage
	}
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, "", "", ErrTooLarge
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, "", "", ErrTooLarge
	}

	ct := http.DetectContentType(raw)
	ext, ok := imageExt[ct]
	if !ok {
		return nil, "", "", fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, ct)
	}
	return raw, ct, ext, nil
}

var imageExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}
