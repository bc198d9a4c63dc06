package persistent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andreyxaxa/Image-Moderator/pkg/s3client"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type ObjectRepo struct {
	*s3client.S3Client
}

func NewObjectRepo(s3c *s3client.S3Client) *ObjectRepo {
	return &ObjectRepo{s3c}
}

func (r *ObjectRepo) DownloadBytes(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("ObjectRepo - DownloadBytes: %w", errs.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("ObjectRepo - DownloadBytes - r.Client.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("ObjectRepo - DownloadBytes - io.ReadAll: %w", err)
	}

	return b, nil
}

func (r *ObjectRepo) Delete(ctx context.Context, bucket, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}
