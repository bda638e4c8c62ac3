package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/suPer8Hu/ai-studio/internal/common"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores generated images in a bucket. It has no image pipeline, so the
// transformation operations report ErrUnsupported.
type S3 struct {
	client  putObjectAPI
	bucket  string
	prefix  string
	baseURL string
}

type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	AccessKey     string
	SecretKey     string
	Prefix        string
}

func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return newS3(client, opts.Bucket, opts.Prefix, baseURL), nil
}

func newS3(client putObjectAPI, bucket, prefix, baseURL string) *S3 {
	return &S3{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *S3) UploadDataURI(ctx context.Context, dataURI string) (string, error) {
	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("%w: s3: malformed data uri", ErrUpload)
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")

	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: s3: decode: %v", ErrUpload, err)
	}

	id, err := common.NewULID()
	if err != nil {
		return "", err
	}
	ext := ".png"
	if sub, found := strings.CutPrefix(contentType, "image/"); found && sub != "" {
		ext = "." + sub
	}
	key := path.Join(s.prefix, strings.ToLower(id)+ext)

	return s.put(ctx, key, contentType, bytes.NewReader(img))
}

func (s *S3) put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: s3: %v", ErrUpload, err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3) RemoveBackground(ctx context.Context, filename string, image io.Reader) (string, error) {
	return "", fmt.Errorf("%w: s3 background removal", ErrUnsupported)
}

func (s *S3) RemoveObject(ctx context.Context, filename string, image io.Reader, object string) (string, error) {
	return "", fmt.Errorf("%w: s3 object removal", ErrUnsupported)
}
