// Package storage reads source workbooks and writes exports to the local
// filesystem, S3-compatible object stores or Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsupportedScheme indicates a URI scheme with no backend.
var ErrUnsupportedScheme = errors.New("unsupported storage scheme")

// Store abstracts blob storage for one bucket or directory.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Config holds credentials and endpoints for the remote backends.
type Config struct {
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Location is a parsed source or destination URI.
type Location struct {
	// Scheme is "file", "s3" or "gs".
	Scheme string
	Bucket string
	// Key is the object key, or the filesystem path for Scheme "file".
	Key string
}

// Base returns the final path element, used to pick a table reader.
func (l Location) Base() string { return path.Base(filepath.ToSlash(l.Key)) }

func (l Location) String() string {
	if l.Scheme == "file" {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// ParseURI splits s3://bucket/key, gs://bucket/key, file:///path and plain paths.
func ParseURI(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, errors.New("empty source uri")
	}
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return Location{Scheme: "file", Key: uri}, nil
	}
	scheme = strings.ToLower(scheme)
	switch scheme {
	case "file":
		return Location{Scheme: "file", Key: rest}, nil
	case "s3", "gs":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("uri %q: want %s://bucket/key", uri, scheme)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// Open returns the store serving loc.
func Open(ctx context.Context, loc Location, cfg Config) (Store, error) {
	switch loc.Scheme {
	case "file":
		return NewLocalStore(""), nil
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:    loc.Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gs":
		return NewGCSStore(ctx, loc.Bucket)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, loc.Scheme)
	}
}

// Fetch reads the object at uri.
func Fetch(ctx context.Context, uri string, cfg Config) ([]byte, Location, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, Location{}, err
	}
	st, err := Open(ctx, loc, cfg)
	if err != nil {
		return nil, loc, err
	}
	data, err := st.Get(ctx, loc.Key)
	if err != nil {
		return nil, loc, fmt.Errorf("fetch %s: %w", loc, err)
	}
	return data, loc, nil
}

// Upload writes data to uri.
func Upload(ctx context.Context, uri string, data []byte, contentType string, cfg Config) error {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}
	st, err := Open(ctx, loc, cfg)
	if err != nil {
		return err
	}
	if err := st.Put(ctx, loc.Key, data, contentType); err != nil {
		return fmt.Errorf("upload %s: %w", loc, err)
	}
	return nil
}

// LocalStore implements Store on the local filesystem.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a LocalStore. An empty baseDir resolves keys as given.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

func (s *LocalStore) path(key string) string {
	if s.BaseDir == "" {
		return key
	}
	return filepath.Join(s.BaseDir, key)
}

// Get reads a file.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

// Put writes a file, creating parent directories.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}
