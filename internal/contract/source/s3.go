package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const zstdContentType = "application/zstd"

// ObjectGetter is the subset of the S3 client used to download documents.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 fetches contract documents addressed as s3://bucket/key.
type S3 struct {
	client ObjectGetter
}

// NewS3 returns an S3 backend using client, typically s3.NewFromConfig(cfg).
func NewS3(client ObjectGetter) *S3 {
	return &S3{client: client}
}

// Fetch downloads the object. Objects stored with the application/zstd
// content type are decompressed even without a .zst suffix.
func (s *S3) Fetch(ctx context.Context, loc *url.URL) ([]byte, error) {
	bucket := loc.Host
	key := strings.TrimPrefix(loc.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3 location %q needs a bucket and key", ErrUnsupportedSource, loc)
	}

	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("download %s (bucket: %s, key: %s): %w", loc, bucket, key, err)
	}
	defer obj.Body.Close()

	data, err := readLimited(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}

	if aws.ToString(obj.ContentType) == zstdContentType && !isCompressed(loc) {
		return decompress(data)
	}
	return data, nil
}
