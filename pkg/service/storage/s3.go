package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"
)

// S3API is the subset of the S3 client used by S3
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 stores blobs as objects under s3://<bucket>/<prefix>/
type S3 struct {
	client S3API
	bucket string
	prefix string
}

// NewS3 creates an S3 store using the default AWS credential chain
func NewS3(ctx context.Context, bucket, prefix, region string) (*S3, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS configuration")
	}
	return NewS3WithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3WithClient creates an S3 store with an explicit client
func NewS3WithClient(client S3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// Sub returns a store whose keys are nested under prefix
func (x *S3) Sub(prefix string) *S3 {
	return &S3{client: x.client, bucket: x.bucket, prefix: path.Join(x.prefix, prefix)}
}

// Key returns the object key of key
func (x *S3) Key(key string) string {
	return path.Join(x.prefix, key)
}

// URI returns the s3:// location of key
func (x *S3) URI(key string) string {
	return "s3://" + x.bucket + "/" + x.Key(key)
}

// Put uploads data as an object
func (x *S3) Put(ctx context.Context, key string, data []byte) error {
	_, err := x.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(x.bucket),
		Key:         aws.String(x.Key(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upload to s3",
			goerr.V("bucket", x.bucket),
			goerr.V("key", x.Key(key)))
	}
	return nil
}

// Get downloads an object
func (x *S3) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := x.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(x.bucket),
		Key:    aws.String(x.Key(key)),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download from s3",
			goerr.V("bucket", x.bucket),
			goerr.V("key", x.Key(key)))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read s3 object body", goerr.V("key", x.Key(key)))
	}
	return data, nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
