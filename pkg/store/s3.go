package store

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/settings"
)

// maxSnapshotSize bounds the object body read back from S3.
const maxSnapshotSize = 1 << 20

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store stores snapshots as JSON objects in an S3 bucket.
//
// Example usage:
//
//	client := s3.NewFromConfig(awsCfg)
//	st := store.NewS3Store(client, "my-bucket", "inkpad/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store writing objects under bucket/prefix.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key used for id.
func (s *S3Store) Key(id string) string {
	return s.prefix + id + ".json"
}

// Save uploads s as JSON.
func (s *S3Store) Save(ctx context.Context, id string, snap settings.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return errors.New("E202").Wrap(err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(id)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"document":   id,
			"saved-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("E202").WithDetail("s3 put " + s.Key(id)).Wrap(err)
	}
	return nil
}

// Load downloads and validates the snapshot stored for id.
func (s *S3Store) Load(ctx context.Context, id string) (settings.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return settings.Snapshot{}, notFound(id)
		}
		return settings.Snapshot{}, errors.New("E202").WithDetail("s3 get " + s.Key(id)).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxSnapshotSize))
	if err != nil {
		return settings.Snapshot{}, errors.New("E202").Wrap(err)
	}
	return settings.DecodeSnapshot(data)
}
