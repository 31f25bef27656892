package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

// PutObjectAPI — часть s3.Client, нужная архиву.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 скачивает каждое вложение через бот и кладёт его в бакет.
type S3 struct {
	client PutObjectAPI
	files  transport.Transport
	bucket string
	newID  func() string
}

func NewS3(client PutObjectAPI, files transport.Transport, bucket string) *S3 {
	return &S3{client: client, files: files, bucket: bucket, newID: uuid.NewString}
}

func (a *S3) Archive(ctx context.Context, r *model.Report) ([]string, error) {
	items := MediaItems(r, "")
	keys := make([]string, 0, len(items))
	for i, it := range items {
		data, err := a.files.Download(ctx, it.FileID)
		if err != nil {
			return keys, fmt.Errorf("archive to s3: %w", err)
		}
		key := ObjectKey(r.ID, i+1, a.newID(), it.Kind)
		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(it.Kind)),
			Metadata: map[string]string{
				"report_id": r.ID,
				"file_id":   it.FileID,
			},
		})
		if err != nil {
			return keys, fmt.Errorf("archive to s3: put %s: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ObjectKey: reports/<id>/<n>-<uuid>.<ext>.
func ObjectKey(reportID string, n int, id string, kind transport.MediaKind) string {
	return fmt.Sprintf("reports/%s/%d-%s.%s", reportID, n, id, extension(kind))
}

func extension(kind transport.MediaKind) string {
	if kind == transport.MediaVideo {
		return "mp4"
	}
	return "jpg"
}

func contentType(kind transport.MediaKind) string {
	if kind == transport.MediaVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// NewS3Client загружает конфигурацию AWS; endpoint (AWS_ENDPOINT_URL) переключает
// клиент на совместимое хранилище вроде localstack или MinIO.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(region)}
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				HostnameImmutable: true,
				PartitionID:       "aws",
			}, nil
		})
		opts = append(opts, awsCfg.WithEndpointResolverWithOptions(resolver))
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
		}
	}), nil
}
