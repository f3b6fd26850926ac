package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrObjectExists is returned when an archive object is already present.
var ErrObjectExists = errors.New("gcs object already exists")

type GCSClient struct {
	Client     *storage.Client
	BucketName string
	FolderName string
}

type GcsInterface interface {
	UploadJSON(ctx context.Context, objectName string, payload any) error
	Close(ctx context.Context)
}

func NewGCSClient(ctx context.Context, cfg config.GCSConfig, opts ...option.ClientOption) (*GCSClient, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSClient{
		Client:     client,
		BucketName: cfg.BucketName,
		FolderName: cfg.FolderName,
	}, nil
}

func (g *GCSClient) Close(ctx context.Context) {
	if g.Client == nil {
		return
	}
	if err := g.Client.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorClosingGCSClient, err)
	}
}

// UploadJSON writes payload under the configured folder. Objects are write-once:
// a second upload of the same name returns ErrObjectExists.
func (g *GCSClient) UploadJSON(ctx context.Context, objectName string, payload any) error {
	fullName := path.Join(g.FolderName, objectName)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorMarshallingJSON, err)
		return err
	}

	object := g.Client.Bucket(g.BucketName).Object(fullName)
	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err = writer.Write(jsonData); err != nil {
		_ = writer.Close()
		logger.CtxError(ctx, log_messages.ErrorUploadingToGCS, err, zap.String("object", fullName))
		return err
	}
	if err := writer.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrObjectExists
		}
		logger.CtxError(ctx, log_messages.ErrorClosingGCSWriter, err, zap.String("object", fullName))
		return err
	}

	logger.CtxInfo(ctx, log_messages.UploadedToGCSBucket, zap.String("object", fullName))
	return nil
}
