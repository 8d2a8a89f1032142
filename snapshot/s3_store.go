/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config names the bucket and credentials an S3Store connects with,
// mirroring memcp's S3Factory (storage/persistence-s3.go) field for field
// so a host's existing S3-compatible config (MinIO, Ceph RGW, real AWS)
// ports over unchanged.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string // non-empty for S3-compatible stores (MinIO, RGW)
	Bucket          string
	Prefix          string
	ForcePathStyle  bool
}

// S3Store persists snapshots as whole objects under Prefix/name. S3 has no
// append; every write fully replaces the object, which matches a snapshot
// generation's all-or-nothing nature.
type S3Store struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
	opened bool
}

// NewS3Store returns a Store backed by cfg. The client connects lazily on
// first use.
func NewS3Store(cfg S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) ensureOpen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.AccessKeyID, s.cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return fmt.Errorf("snapshot: load aws config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
		}
		o.UsePathStyle = s.cfg.ForcePathStyle
	})
	s.opened = true
	return nil
}

func (s *S3Store) key(name string) string {
	pfx := strings.TrimSuffix(s.cfg.Prefix, "/")
	if pfx == "" {
		return name
	}
	return pfx + "/" + name
}

func (s *S3Store) WriteSnapshot(name string, data io.Reader) error {
	ctx := context.Background()
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(buf),
	})
	if err != nil {
		return fmt.Errorf("snapshot: s3 put %s: %w", name, err)
	}
	return nil
}

func (s *S3Store) ReadSnapshot(name string) (io.ReadCloser, error) {
	ctx := context.Background()
	if err := s.ensureOpen(ctx); err != nil {
		return ErrorReader{Err: err}, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			err = fmt.Errorf("snapshot: s3 get %s: %w: %w", name, os.ErrNotExist, err)
		}
		return ErrorReader{Err: err}, err
	}
	return out.Body, nil
}

func (s *S3Store) RemoveSnapshot(name string) error {
	ctx := context.Background()
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// isNotFound reports whether err is an S3 "object does not exist" API
// error. ReadSnapshot wraps such errors in os.ErrNotExist so callers can use
// errors.Is(err, os.ErrNotExist) the same way they would against FileStore's
// os.Open error, instead of switching on backend-specific error codes.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
