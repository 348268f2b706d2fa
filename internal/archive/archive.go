// Package archive keeps raw oracle output that could not be extracted so the
// prompts can be tuned against real failures.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/config"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"go.uber.org/zap"
)

const keyPrefix = "failed-extractions"

// FailedExtraction is one archived oracle reply.
type FailedExtraction struct {
	PromptID  uuid.UUID        `json:"prompt_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Shape     extract.Shape    `json:"shape"`
	Raw       string           `json:"raw"`
	Failure   *extract.Failure `json:"failure"`
	CreatedAt time.Time        `json:"created_at"`
}

// Archive stores failed extractions and returns the key they were saved
// under.
type Archive interface {
	Put(ctx context.Context, rec FailedExtraction) (string, error)
}

// Uploader is the subset of the S3 client the archive needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes each failure as a JSON object under a date-partitioned
// key.
type S3Archive struct {
	client Uploader
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

func NewS3Archive(client Uploader, bucket string, logger *zap.Logger) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		logger: logger.Named("archive"),
		now:    time.Now,
	}
}

// FromConfig builds an S3Archive from the application S3 configuration.
func FromConfig(s3cfg *config.S3Config, logger *zap.Logger) *S3Archive {
	return NewS3Archive(s3cfg.Client, s3cfg.BucketName, logger)
}

func (a *S3Archive) Put(ctx context.Context, rec FailedExtraction) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = a.now().UTC()
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode archive record: %w", err)
	}

	key := Key(rec.CreatedAt, uuid.New())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	a.logger.Info("archived failed extraction",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.String("prompt_id", rec.PromptID.String()))
	return key, nil
}

// Key returns the object key for a record created at t.
func Key(t time.Time, id uuid.UUID) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s.json", keyPrefix, t.Year(), int(t.Month()), t.Day(), id)
}

// Nop discards everything. It is used when no bucket is configured.
type Nop struct{}

func (Nop) Put(context.Context, FailedExtraction) (string, error) { return "", nil }
