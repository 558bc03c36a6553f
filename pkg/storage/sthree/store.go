// Package sthree implements a storage.Store on AWS S3, for mirroring
// published archives to a bucket.
package sthree

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/nipy/data-packaging/pkg/storage"
)

const pageSize = 1000

// Option configures an S3 store
type Option func(*s3FS)

// Bucket sets the bucket archives are mirrored to
func Bucket(bucket string) Option {
	return func(fs *s3FS) {
		fs.bucket = bucket
	}
}

// Prefix sets a key prefix for all objects in the store
func Prefix(prefix string) Option {
	return func(fs *s3FS) {
		fs.prefix = prefix
	}
}

// AWSConfig overrides the default AWS client configuration
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// New creates an S3 backed object store
func New(opts ...Option) storage.Store {
	fs := new(s3FS)
	for _, apply := range opts {
		apply(fs)
	}
	fs.s3 = s3.New(session.Must(session.NewSession(fs.awsConfig)))
	fs.uploader = s3manager.NewUploaderWithClient(fs.s3)
	return fs
}

type s3FS struct {
	bucket    string
	prefix    string
	awsConfig *aws.Config
	s3        *s3.S3
	uploader  *s3manager.Uploader
}

func (s *s3FS) key(key string) *string {
	if s.prefix == "" {
		return aws.String(key)
	}
	return aws.String(s.prefix + "/" + key)
}

func (s *s3FS) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == "NotFound" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3FS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *s3FS) Put(ctx context.Context, key string, source io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
		Body:   source,
	})
	if err != nil {
		return fmt.Errorf("upload %q to %s: %v", key, s.String(), err)
	}
	return nil
}

func (s *s3FS) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
	})
	return err
}

func (s *s3FS) Keys(ctx context.Context) ([]string, error) {
	res := make([]string, 0, pageSize)
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int64(pageSize),
	}
	if s.prefix != "" {
		in.Prefix = aws.String(s.prefix + "/")
	}
	err := s.s3.ListObjectsV2PagesWithContext(ctx, in,
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				res = append(res, aws.StringValue(obj.Key))
			}
			return true
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *s3FS) String() string {
	if s.prefix == "" {
		return "s3@" + s.bucket
	}
	return "s3@" + s.bucket + "/" + s.prefix
}
