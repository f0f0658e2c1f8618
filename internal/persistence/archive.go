package persistence

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"gpem17-evo/internal/config"
	"gpem17-evo/pkg/expdir"
)

// objectStore is the subset of *minio.Client used for archiving.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archiver uploads a finished run directory to object storage.
type Archiver struct {
	store  objectStore
	bucket string
	region string
	prefix string
}

// NewMinIOArchiver builds an Archiver backed by a MinIO/S3 client.
func NewMinIOArchiver(cfg config.ArchiveConf) (*Archiver, error) {
	if !cfg.Enabled() || cfg.Bucket == "" {
		return nil, fmt.Errorf("persistence: archive endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("persistence: minio client: %w", err)
	}
	return NewArchiver(client, cfg.Bucket, cfg.Region, cfg.Prefix), nil
}

// NewArchiver wraps an existing object store client.
func NewArchiver(store objectStore, bucket, region, prefix string) *Archiver {
	return &Archiver{store: store, bucket: bucket, region: region, prefix: prefix}
}

// Archive uploads every regular file of dir under <prefix>/<run name>/ and
// returns the number of objects written.
func (a *Archiver) Archive(ctx context.Context, run RunInfo, dir expdir.Dir) (int, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return 0, err
	}
	files, err := dir.ListFiles()
	if err != nil {
		return 0, err
	}
	for i, rel := range files {
		key := objectKey(a.prefix, run.Name, rel)
		opts := minio.PutObjectOptions{ContentType: contentType(rel)}
		if _, err := a.store.FPutObject(ctx, a.bucket, key, filepath.Join(dir.Path(), rel), opts); err != nil {
			return i, fmt.Errorf("persistence: upload %s: %w", key, err)
		}
	}
	return len(files), nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	exists, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("persistence: bucket exists %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.store.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("persistence: make bucket %s: %w", a.bucket, err)
	}
	return nil
}

func objectKey(prefix, runName, rel string) string {
	return path.Join(prefix, runName, filepath.ToSlash(rel))
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".txt", ".params":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
