package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/util"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error
	// Download returns util.ErrNotFound (wrapped) when the object is missing.
	Download(ctx context.Context, filename string) ([]byte, error)
}

func validKey(filename string) error {
	if filename == "" || strings.Contains(filename, "..") || strings.HasPrefix(filename, "/") {
		return util.Validationf("invalid storage key %q", filename)
	}
	return nil
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error {
	if err := validKey(filename); err != nil {
		return err
	}
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func (p *LocalStorageProvider) Download(ctx context.Context, filename string) ([]byte, error) {
	if err := validKey(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(p.Config.LocalPath, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, util.NotFoundf("artifact %s", filename)
	}
	return data, err
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) Download(ctx context.Context, filename string) ([]byte, error) {
	obj, err := p.Client.GetObject(ctx, p.Config.MinioBucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			return nil, util.NotFoundf("artifact %s", filename)
		}
		return nil, err
	}
	return data, nil
}

// OSSStorageProvider 阿里云OSS存储实现
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

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.PutObject(filename, reader, oss.ContentType(contentType), oss.WithContext(ctx))
}

func (p *OSSStorageProvider) Download(ctx context.Context, filename string) ([]byte, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return nil, err
	}

	body, err := bucket.GetObject(filename, oss.WithContext(ctx))
	if err != nil {
		var serviceErr oss.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.StatusCode == http.StatusNotFound {
			return nil, util.NotFoundf("artifact %s", filename)
		}
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// MemoryStorageProvider keeps artifacts in process memory.
type MemoryStorageProvider struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorageProvider() *MemoryStorageProvider {
	return &MemoryStorageProvider{objects: make(map[string][]byte)}
}

func (p *MemoryStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[filename] = data
	return nil
}

func (p *MemoryStorageProvider) Download(ctx context.Context, filename string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.objects[filename]
	if !ok {
		return nil, util.NotFoundf("artifact %s", filename)
	}
	return bytes.Clone(data), nil
}

// Remove drops an object; used to simulate lost artifacts.
func (p *MemoryStorageProvider) Remove(filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.objects, filename)
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
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
	case util.StorageMemory:
		provider = NewMemoryStorageProvider()
	default:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}, nil
}

// PutBytes 保存生成的文件，返回存储 key
func (s *StorageService) PutBytes(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if err := s.Provider.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *StorageService) Get(ctx context.Context, filename string) ([]byte, error) {
	return s.Provider.Download(ctx, filename)
}
