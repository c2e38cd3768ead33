package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/storage/modelstore"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

const contentTypeJSON = "application/json"

// ModelRepository is a modelstore.Store over a bucket. Objects live under
// <prefix>/vectorizer.json and <prefix>/risk_model.json.
type ModelRepository struct {
	client *MinIOClient
	logger logging.Logger
}

// NewModelRepository returns a store backed by client.
func NewModelRepository(client *MinIOClient, log logging.Logger) *ModelRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ModelRepository{client: client, logger: log}
}

func (r *ModelRepository) key(name string) string {
	if r.client.config.Prefix == "" {
		return name
	}
	return path.Join(r.client.config.Prefix, name)
}

// Location implements modelstore.Store.
func (r *ModelRepository) Location() string {
	return "s3://" + path.Join(r.client.Bucket(), r.client.config.Prefix)
}

// Save uploads the vectorizer then the model. Load rejects a mixed pair, so a
// crash between the two uploads is detected rather than served.
func (r *ModelRepository) Save(ctx context.Context, a modelstore.Artifacts) error {
	api, err := r.client.api()
	if err != nil {
		return err
	}
	for _, obj := range []struct {
		name string
		data []byte
	}{
		{modelstore.VectorizerArtifact, a.Vectorizer},
		{modelstore.ModelArtifact, a.Model},
	} {
		opts := minio.PutObjectOptions{
			ContentType:  contentTypeJSON,
			UserMetadata: map[string]string{"artifact": obj.name},
		}
		info, err := api.PutObject(ctx, r.client.Bucket(), r.key(obj.name), bytes.NewReader(obj.data), int64(len(obj.data)), opts)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "upload "+obj.name)
		}
		r.logger.Debug("artifact uploaded",
			logging.String("key", info.Key),
			logging.String("etag", info.ETag),
			logging.Int64("size", info.Size))
	}
	return nil
}

// Load downloads both artifacts. A missing object is
// modelstore.ErrArtifactNotFound.
func (r *ModelRepository) Load(ctx context.Context) (modelstore.Artifacts, error) {
	api, err := r.client.api()
	if err != nil {
		return modelstore.Artifacts{}, err
	}
	vec, err := r.download(ctx, api, modelstore.VectorizerArtifact)
	if err != nil {
		return modelstore.Artifacts{}, err
	}
	mdl, err := r.download(ctx, api, modelstore.ModelArtifact)
	if err != nil {
		return modelstore.Artifacts{}, err
	}
	return modelstore.Artifacts{Vectorizer: vec, Model: mdl}, nil
}

func (r *ModelRepository) download(ctx context.Context, api ObjectAPI, name string) ([]byte, error) {
	key := r.key(name)
	if _, err := api.StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil, modelstore.ErrArtifactNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "stat "+key)
	}

	body, err := api.ReadObject(ctx, r.client.Bucket(), key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "get "+key)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		if isNotFound(err) {
			return nil, modelstore.ErrArtifactNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "read "+key)
	}
	return data, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

var _ modelstore.Store = (*ModelRepository)(nil)

//Personal.AI order the ending
