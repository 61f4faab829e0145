package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/samirrijal/ndfdanim/internal/core/ports"
)

type mockPut struct {
	putFn func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

func (m *mockPut) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putFn(in)
}

func TestUpload_PublicRead(t *testing.T) {
	var got *s3.PutObjectInput
	var body []byte
	store := New(&mockPut{putFn: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		got = in
		body, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}}, "forecast-output")

	if err := store.Upload(context.Background(), "forecast.gif", "image/gif", ports.AccessPublicRead, []byte("GIF89a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aws.ToString(got.Bucket) != "forecast-output" || aws.ToString(got.Key) != "forecast.gif" {
		t.Errorf("unexpected target %s/%s", aws.ToString(got.Bucket), aws.ToString(got.Key))
	}
	if got.ACL != types.ObjectCannedACLPublicRead || aws.ToString(got.ContentType) != "image/gif" {
		t.Errorf("unexpected acl/content type %s %s", got.ACL, aws.ToString(got.ContentType))
	}
	if string(body) != "GIF89a" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestUpload_Error(t *testing.T) {
	store := New(&mockPut{putFn: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("AccessDenied")
	}}, "b")
	if err := store.Upload(context.Background(), "k", "image/gif", ports.AccessPublicRead, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpload_UnknownPolicy(t *testing.T) {
	store := New(&mockPut{putFn: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		t.Fatal("must not call PutObject")
		return nil, nil
	}}, "b")
	if err := store.Upload(context.Background(), "k", "image/gif", ports.AccessPolicy("world-writable"), nil); err == nil {
		t.Fatal("expected unsupported policy error")
	}
}
