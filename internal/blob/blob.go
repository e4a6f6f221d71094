// internal/blob/blob.go
//
// Attachment object storage.
//
// Context
// -------
// Attachments live in one S3-compatible bucket.  The Store interface is
// what the intake pipeline sees; S3Store is the production implementation
// on aws-sdk-go and also talks to MinIO when an endpoint is configured.
//
// Workflow
// --------
//   • NewS3 builds a session from config and makes sure the bucket exists.
//   • Put streams one object and returns its public URL.
//   • Delete removes one object.  Intake calls it for uploads whose
//     attachment rows could not be recorded.
//
// Public URLs
// -----------
//   1. storage.public_base_url set  → <base>/<key>
//   2. custom endpoint (MinIO)      → <scheme>://<endpoint>/<bucket>/<key>
//   3. AWS                          → https://<bucket>.s3.<region>.amazonaws.com/<key>

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"

	"github.com/yanizio/venuedesk/internal/config"
)

// Store is the narrow contract the rest of the app depends on.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	api        s3iface.S3API
	bucket     string
	publicBase string
}

var _ Store = (*S3Store)(nil)

// NewS3 constructs an S3Store from the storage section of the config.
func NewS3(ctx context.Context, cfg config.Storage) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
		awsCfg.DisableSSL = aws.Bool(cfg.DisableSSL)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	st := &S3Store{
		api:        s3.New(sess),
		bucket:     cfg.Bucket,
		publicBase: publicBase(cfg),
	}
	if err := st.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// NewS3WithAPI wires an existing client; tests pass a mock S3API.
func NewS3WithAPI(api s3iface.S3API, bucket, publicBase string) *S3Store {
	return &S3Store{api: api, bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}
}

// Put uploads body under key and returns the object's public URL.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes key.  Missing objects are not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL for key.
func (s *S3Store) URL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

// ensureBucket creates the bucket when HeadBucket reports it missing.
// MinIO dev setups start empty; AWS buckets are normally provisioned.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var aerr awserr.Error
	if !errors.As(err, &aerr) || (aerr.Code() != "NotFound" && aerr.Code() != s3.ErrCodeNoSuchBucket) {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	if _, err := s.api.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	zap.S().Infow("storage bucket created", "bucket", s.bucket)
	return nil
}

// publicBase derives the URL prefix objects are served from.
func publicBase(cfg config.Storage) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" && !strings.Contains(cfg.Endpoint, "amazonaws.com") {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
		scheme := "https"
		if cfg.DisableSSL {
			scheme = "http"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(host, "/"), cfg.Bucket)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
}
