package service

import (
	"context"
	"designhub_backend/internal/config"
	"designhub_backend/internal/util"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider signs lesson video object keys into playable URLs.
type StorageProvider interface {
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Ping(ctx context.Context) error
}

// LocalStorageProvider serves files from a directory mounted under /uploads.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "/uploads/" + key, nil
}

func (p *LocalStorageProvider) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Clean(p.Config.LocalPath))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", p.Config.LocalPath)
	}
	return nil
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
		// with an empty region presigning performs a bucket location request
		Region: region(cfg.MinioRegion),
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func region(r string) string {
	if r == "" {
		return "us-east-1"
	}
	return r
}

func (p *MinioStorageProvider) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (p *MinioStorageProvider) Ping(ctx context.Context) error {
	ok, err := p.Client.BucketExists(ctx, p.Config.MinioBucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", p.Config.MinioBucket)
	}
	return nil
}

type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	return bucket.SignURL(key, oss.HTTPGet, int64(ttl.Seconds()))
}

func (p *OSSStorageProvider) Ping(ctx context.Context) error {
	ok, err := p.Client.IsBucketExist(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", p.Config.OSSBucket)
	}
	return nil
}

// StorageService resolves lesson video references.
type StorageService struct {
	Provider StorageProvider
	ttl      atomic.Int64
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		provider = p
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init oss storage: %w", err)
		}
		provider = p
	default:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	s := &StorageService{Provider: provider}
	s.SetTTL(cfg.Storage.PresignTTL)
	return s, nil
}

func (s *StorageService) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s.ttl.Store(int64(ttl))
}

// VideoURL returns a playable URL for a lesson's video reference. Absolute URLs are
// returned untouched; anything else is an object key in the configured store.
func (s *StorageService) VideoURL(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return ref, nil
	}
	key := strings.TrimPrefix(path.Clean("/"+ref), "/")
	return s.Provider.SignedURL(ctx, key, time.Duration(s.ttl.Load()))
}

func (s *StorageService) Ping(ctx context.Context) error {
	return s.Provider.Ping(ctx)
}
