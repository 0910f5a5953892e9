// Package blob stores uploaded media in S3-compatible object storage
// and hands back fetchable URLs. Documents hold the URL, never the
// bytes.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/utils"
)

// Store uploads objects and returns their public URLs.
type Store interface {
	Put(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error)
}

// MinioStore is the production Store backed by a MinIO/S3 endpoint.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects to the endpoint and ensures the bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, apperr.Internal("connect to object storage", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, apperr.Internal("check bucket", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperr.Internal("create bucket", err)
		}
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return &MinioStore{
		client:  client,
		bucket:  bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket),
	}, nil
}

// Put streams the object up and returns its URL. Object names get a
// random prefix so client-chosen names cannot collide or be guessed.
func (s *MinioStore) Put(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error) {
	key := utils.GenID() + "-" + sanitizeName(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", apperr.Internal("upload object", err)
	}
	url := s.baseURL + "/" + key
	logger.Log.Info("blob_uploaded", zap.String("key", key), zap.Int64("size", size))
	return url, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := b.String()
	if out == "" {
		out = "upload"
	}
	return out
}
