// Package artifact stores generated files such as exported invoices.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("artifact: invalid key")

// Object describes a stored file.
type Object struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	Size     int64  `json:"size"`
	Driver   string `json:"driver"`
}

// Store is where generated files are kept.
type Store interface {
	// Put writes body under key, replacing any previous content.
	Put(ctx context.Context, key, contentType string, body []byte) (*Object, error)
	// Driver names the backend, e.g. "local".
	Driver() string
}

// Key builds the storage key of an invoice file for an owner.
func Key(owner, fileName string) string {
	return path.Join("invoices", owner, fileName)
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(key)), "/")
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

// --- Local store (files under a directory) ---

type localStore struct {
	root string
}

// NewLocalStore creates a store that writes below root.
func NewLocalStore(root string) Store {
	return &localStore{root: root}
}

func (s *localStore) Put(ctx context.Context, key, contentType string, body []byte) (*Object, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("artifact: failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return nil, fmt.Errorf("artifact: failed to write %s: %w", key, err)
	}
	return &Object{Key: key, Location: full, Size: int64(len(body)), Driver: s.Driver()}, nil
}

func (s *localStore) Driver() string { return "local" }

// --- S3 store ---

type s3Store struct {
	bucket   string
	prefix   string
	uploader *s3manager.Uploader
}

// S3Options configure the S3 store.
type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
}

// NewS3Store creates a store that uploads to an S3 bucket. Credentials come
// from the default AWS provider chain.
func NewS3Store(opts S3Options) (Store, error) {
	cfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("artifact: failed to create AWS session: %w", err)
	}
	return &s3Store{
		bucket:   opts.Bucket,
		prefix:   strings.Trim(opts.Prefix, "/"),
		uploader: s3manager.NewUploader(sess),
	}, nil
}

func (s *s3Store) Put(ctx context.Context, key, contentType string, body []byte) (*Object, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: failed to upload %s to bucket %s: %w", key, s.bucket, err)
	}
	return &Object{Key: key, Location: out.Location, Size: int64(len(body)), Driver: s.Driver()}, nil
}

func (s *s3Store) Driver() string { return "s3" }

// --- Null store (keeps nothing; the file is only streamed to the caller) ---

type nullStore struct{}

// NewNullStore creates a store that discards everything.
func NewNullStore() Store {
	return &nullStore{}
}

func (s *nullStore) Put(ctx context.Context, key, contentType string, body []byte) (*Object, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return &Object{Key: key, Size: int64(len(body)), Driver: s.Driver()}, nil
}

func (s *nullStore) Driver() string { return "none" }

// Config selects and configures a store.
type Config struct {
	Driver string
	Path   string
	S3     S3Options
}

// NewStoreFromConfig creates the appropriate Store based on the driver.
//
//	driver: "local", "s3", or "none"
func NewStoreFromConfig(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "local":
		if cfg.Path == "" {
			return nil, fmt.Errorf("artifact: path is required for local storage")
		}
		return NewLocalStore(cfg.Path), nil
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("artifact: bucket is required for s3 storage")
		}
		return NewS3Store(cfg.S3)
	case "none", "":
		return NewNullStore(), nil
	default:
		return nil, fmt.Errorf("artifact: unknown storage driver %q (use local, s3, or none)", cfg.Driver)
	}
}
