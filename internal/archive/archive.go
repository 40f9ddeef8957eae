// Package archive stores snapshots of the enrollment sheets read by reminder
// runs, so a run can be audited against the exact rows it saw.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/trademax/academy-enrollment/internal/config"
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes CSV snapshots to a bucket.
type S3Archiver struct {
	client S3API
	bucket string
	prefix string
}

// New loads AWS credentials from the default chain and returns an archiver
// for cfg.S3Bucket.
func New(ctx context.Context, cfg config.ArchiveConfig) (*S3Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.Prefix), nil
}

// NewWithClient builds an archiver over an existing client.
func NewWithClient(client S3API, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a run: <prefix>/YYYY/MM/DD/<runID>.csv,
// dated in UTC.
func (a *S3Archiver) Key(runID string, at time.Time) string {
	return path.Join(a.prefix, at.UTC().Format("2006/01/02"), runID+".csv")
}

// Archive uploads the CSV text read by run runID.
func (a *S3Archiver) Archive(ctx context.Context, runID string, at time.Time, csv string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(runID, at)),
		Body:        strings.NewReader(csv),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("putting object to S3 bucket %s: %w", a.bucket, err)
	}
	return nil
}
