/*
 * minio.go, part of gomdtools.
 *
 *
 * Copyright 2026 The gomdtools Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	md "github.com/misa-md/gomdtools"
)

// MinIOConfig holds the connection settings for a MinIO or S3 endpoint.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	// Bucket, if not empty, is used for every name. Otherwise names are
	// "bucket/key", optionally with a "s3://" prefix.
	Bucket string
	Secure bool
}

// MinIO reads objects from a MinIO or S3 bucket.
type MinIO struct {
	client *minio.Client
	cfg    MinIOConfig
}

// NewMinIO returns a MinIO source. No request is done until an object is opened.
func NewMinIO(cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, md.Errorf(md.ErrValidation, "", "NewMinIO", "no MinIO endpoint given")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, md.WrapError(md.ErrValidation, cfg.Endpoint, "NewMinIO", err)
	}
	return &MinIO{client: client, cfg: cfg}, nil
}

// split returns the bucket and the object key for name.
func (M *MinIO) split(name string) (string, string, error) {
	if M.cfg.Bucket != "" {
		return M.cfg.Bucket, strings.TrimPrefix(name, "/"), nil
	}
	return SplitObjectName(name)
}

// SplitObjectName splits "bucket/key/parts" (or "s3://bucket/key/parts") in
// bucket and key.
func SplitObjectName(name string) (string, string, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(name, "s3://"), "/")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", md.Errorf(md.ErrValidation, name, "SplitObjectName", "object names must be bucket/key when no bucket is configured")
	}
	return bucket, key, nil
}

// notFound turns the "no such key/bucket" answers of the server into fs.ErrNotExist.
func notFound(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %s", fs.ErrNotExist, err.Error())
	}
	return err
}

func (M *MinIO) OpenRaw(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key, err := M.split(name)
	if err != nil {
		return nil, err
	}
	obj, err := M.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, md.WrapError(md.ErrIO, name, "MinIO.OpenRaw", notFound(err))
	}
	//GetObject is lazy, Stat makes sure the object is there.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, md.WrapError(md.ErrIO, name, "MinIO.OpenRaw", notFound(err))
	}
	return obj, nil
}

func (M *MinIO) Exists(ctx context.Context, name string) (bool, error) {
	bucket, key, err := M.split(name)
	if err != nil {
		return false, err
	}
	_, err = M.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if err = notFound(err); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, md.WrapError(md.ErrIO, name, "MinIO.Exists", err)
}

func (M *MinIO) String() string {
	return fmt.Sprintf("minio %s", M.cfg.Endpoint)
}
