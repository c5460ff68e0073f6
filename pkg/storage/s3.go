package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Bucket stores email templates in S3-compatible object storage.
// Template names map to object keys under the configured prefix.
type Bucket struct {
	client *s3.Client
	cfg    Config
}

// New creates a Bucket with the given configuration.
func New(cfg Config) (*Bucket, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &Bucket{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Read returns the content of the named template.
// Returns ErrNotFound when the object does not exist and ErrObjectTooLarge
// when it exceeds the configured MaxObjectSize.
func (b *Bucket) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.cfg.objectKey(name)),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrReadFailed)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, b.cfg.MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if int64(len(data)) > b.cfg.MaxObjectSize {
		return nil, fmt.Errorf("%w: %s", ErrObjectTooLarge, name)
	}
	return data, nil
}

// Write uploads the named template, replacing any existing object.
func (b *Bucket) Write(ctx context.Context, name string, data []byte) (*Object, error) {
	if len(data) == 0 {
		return nil, ErrEmptyObject
	}
	if int64(len(data)) > b.cfg.MaxObjectSize {
		return nil, fmt.Errorf("%w: %s", ErrObjectTooLarge, name)
	}

	contentType := contentTypeFor(name)
	out, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.cfg.Bucket),
		Key:           aws.String(b.cfg.objectKey(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &Object{
		Key:         name,
		ContentType: contentType,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		Size:        int64(len(data)),
	}, nil
}

// Delete removes the named template.
func (b *Bucket) Delete(ctx context.Context, name string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.cfg.objectKey(name)),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// Stat returns the metadata of the named template without downloading it.
func (b *Bucket) Stat(ctx context.Context, name string) (*Object, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.cfg.objectKey(name)),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}

	return &Object{
		Key:          name,
		ContentType:  aws.ToString(out.ContentType),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// List returns the templates whose names start with prefix.
func (b *Bucket) List(ctx context.Context, prefix string) ([]Object, error) {
	p := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.cfg.Bucket),
		Prefix: aws.String(b.cfg.objectKey(prefix)),
	})

	var objects []Object
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error(err, ErrListFailed)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          b.cfg.templateName(aws.ToString(obj.Key)),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// Healthcheck returns a closure that verifies the bucket is reachable.
func (b *Bucket) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(b.cfg.Bucket),
		})
		if err != nil {
			return wrapS3Error(err, ErrHealthcheckFailed)
		}
		return nil
	}
}
