// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage uploads an exported site to S3-compatible object storage.
// It wraps the AWS SDK v2 and is configured for path-style access, which
// most self-hosted and regional providers require.
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"reactvite/internal/assets"
)

// maxUploads bounds concurrent PUT requests.
const maxUploads = 8

// objectPutter is the part of the S3 client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client uploads site files into one bucket under an optional key prefix.
type Client struct {
	s3       objectPutter
	bucket   string
	prefix   string
	endpoint string
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, so callers can report
// that deploy is not configured.
func New(endpoint, region, accessKey, secretKey, bucket, prefix string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return newClient(s3Client, endpoint, bucket, prefix), nil
}

func newClient(p objectPutter, endpoint, bucket, prefix string) *Client {
	return &Client{
		s3:       p,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		endpoint: endpoint,
	}
}

// Key returns the object key for a slash-separated path relative to the
// site root.
func (c *Client) Key(rel string) string {
	if c.prefix == "" {
		return rel
	}
	return path.Join(c.prefix, rel)
}

// URL returns the path-style URL of the object for rel.
func (c *Client) URL(rel string) string {
	return c.endpoint + "/" + c.bucket + "/" + c.Key(rel)
}

// Upload stores one object with public-read access.
func (c *Client) Upload(ctx context.Context, rel, contentType, cacheControl string, body io.Reader, size int64) error {
	key := c.Key(rel)
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(cacheControl),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// UploadDir uploads every regular file under dir and returns how many were
// written. assetsDir names the chunk directory. Its files are cached for a
// year only when the export's manifest says their names are content-hashed;
// HTML is always revalidated.
func (c *Client) UploadDir(ctx context.Context, dir, assetsDir string) (int, error) {
	hashed := false
	if m, err := assets.ReadManifest(dir); err != nil {
		slog.Warn("no build manifest, chunks will not be cached as immutable", "dir", dir, "error", err)
	} else {
		hashed = m.Hashed
	}

	var uploaded atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxUploads)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		g.Go(func() error {
			if err := c.uploadFile(ctx, p, rel, CacheControl(rel, assetsDir, hashed)); err != nil {
				return err
			}
			uploaded.Add(1)
			return nil
		})
		return ctx.Err()
	})
	if werr := g.Wait(); werr != nil {
		return int(uploaded.Load()), werr
	}
	if err != nil {
		return int(uploaded.Load()), fmt.Errorf("walk %s: %w", dir, err)
	}

	slog.Info("site uploaded", "bucket", c.bucket, "prefix", c.prefix, "files", uploaded.Load())
	return int(uploaded.Load()), nil
}

func (c *Client) uploadFile(ctx context.Context, p, rel, cacheControl string) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("open %s: %w", rel, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	if err := c.Upload(ctx, rel, ContentType(rel), cacheControl, f, info.Size()); err != nil {
		return err
	}
	slog.Debug("object uploaded", "key", c.Key(rel), "size", info.Size())
	return nil
}

// ContentType returns the MIME type for a file name, falling back to
// application/octet-stream.
func ContentType(name string) string {
	switch path.Ext(name) {
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".map":
		return "application/json"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CacheControl returns the Cache-Control header for a site file. Chunks are
// immutable only when hashed, since a development build reuses their names.
func CacheControl(rel, assetsDir string, hashed bool) string {
	switch {
	case strings.HasSuffix(rel, ".html"):
		return "no-cache"
	case hashed && assetsDir != "" && strings.HasPrefix(rel, strings.Trim(assetsDir, "/")+"/"):
		return "public, max-age=31536000, immutable"
	default:
		return "public, max-age=3600"
	}
}
