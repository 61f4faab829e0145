// Package s3 publishes artifacts to an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/samirrijal/ndfdanim/internal/core/ports"
)

// PutAPI is the subset of the S3 client used here.
type PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements ports.BlobStore.
type Store struct {
	api    PutAPI
	bucket string
}

// New creates a store writing to bucket.
func New(api PutAPI, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// NewFromConfig builds a Store from an AWS configuration.
func NewFromConfig(cfg aws.Config, bucket string) *Store {
	return New(s3.NewFromConfig(cfg), bucket)
}

// Upload writes body under key, replacing any existing object.
func (s *Store) Upload(ctx context.Context, key, contentType string, policy ports.AccessPolicy, body []byte) error {
	acl, ok := cannedACL(policy)
	if !ok {
		return fmt.Errorf("unsupported access policy %q", policy)
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		ACL:           acl,
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func cannedACL(p ports.AccessPolicy) (types.ObjectCannedACL, bool) {
	switch p {
	case ports.AccessPublicRead:
		return types.ObjectCannedACLPublicRead, true
	case ports.AccessPrivate, "":
		return types.ObjectCannedACLPrivate, true
	default:
		return "", false
	}
}
