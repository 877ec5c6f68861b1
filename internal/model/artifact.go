package model

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArtifactStore opens persisted model artifacts by URI.
type ArtifactStore interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// S3Options configures access to an S3-compatible object store.
type S3Options struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Artifacts resolves local paths, file:// URIs and s3://bucket/key URIs.
type Artifacts struct {
	s3 *minio.Client
}

// NewArtifacts creates an artifact store. S3 access is only configured when
// opts.Endpoint is set; opening an s3:// URI without it is an error.
func NewArtifacts(opts S3Options) (*Artifacts, error) {
	a := &Artifacts{}
	if opts.Endpoint == "" {
		return a, nil
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	a.s3 = client
	return a, nil
}

// Open implements ArtifactStore.
func (a *Artifacts) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if uri == "" {
		return nil, fmt.Errorf("artifact uri is empty")
	}
	if !strings.Contains(uri, "://") {
		return os.Open(uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact uri %q: %w", uri, err)
	}

	switch u.Scheme {
	case "file":
		return os.Open(u.Path)
	case "s3":
		return a.openS3(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported artifact scheme %q", u.Scheme)
	}
}

func (a *Artifacts) openS3(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if a.s3 == nil {
		return nil, fmt.Errorf("s3 artifact %q requested but no s3 endpoint is configured", u.String())
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 uri must be s3://bucket/key, got %q", u.String())
	}

	obj, err := a.s3.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("s3 stat %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

func readArtifact(ctx context.Context, store ArtifactStore, uri string) ([]byte, error) {
	rc, err := store.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
