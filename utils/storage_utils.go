package utils

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Storage pushes objects to an S3-compatible bucket and resolves their
// public URLs. The URL is a pure function of the object key.
type S3Storage struct {
	client   *s3.S3
	bucket   string
	endpoint string
}

func NewS3Storage(accessKey, secretKey, bucket, region, endpoint string) *S3Storage {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(
			accessKey, secretKey, "",
		),
	}))
	return &S3Storage{
		client:   s3.New(sess),
		bucket:   bucket,
		endpoint: endpoint,
	}
}

// Upload stores the object under key with public-read access and returns the
// public URL.
func (s *S3Storage) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL resolves the bucket-hosted URL for a key.
func (s *S3Storage) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, trimScheme(s.endpoint), key)
}

// Delete removes an object. Used when a listing drops one of its photos.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %v", err)
	}
	return nil
}

func trimScheme(endpoint string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(endpoint) > len(prefix) && endpoint[:len(prefix)] == prefix {
			return endpoint[len(prefix):]
		}
	}
	return endpoint
}
