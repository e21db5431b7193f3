package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type s3API interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Uploader writes image blobs to an S3-compatible bucket and returns
// publicly resolvable URLs.
type S3Uploader struct {
	api           s3API
	bucket        string
	publicBaseURL string
}

type S3Config struct {
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

func NewS3Uploader(cfg S3Config) *S3Uploader {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey, cfg.SecretKey, "",
		),
	}))
	return &S3Uploader{
		api:           s3.New(sess),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// UploadFile uploads one object and returns its public URL.
func (u *S3Uploader) UploadFile(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := u.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          aws.ReadSeekCloser(body),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}
	return fmt.Sprintf("%s/%s", u.publicBaseURL, key), nil
}

// progressReader counts bytes handed to the transport. The SDK may seek back
// to the start for signing or resends; a rewind resets the counter so the
// reported figure never exceeds total.
type progressReader struct {
	rs       io.ReadSeeker
	total    int64
	sent     int64
	onChange func(transferred, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.rs.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onChange != nil {
			p.onChange(p.sent, p.total)
		}
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.rs.Seek(offset, whence)
	if err == nil && pos == 0 {
		p.sent = 0
	}
	return pos, err
}
