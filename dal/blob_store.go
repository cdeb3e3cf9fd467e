package dal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"octodon/shared"
)

// blobStore keeps the snapshot and the committed post documents in an
// S3-compatible bucket.
type blobStore struct {
	cfg    *shared.Config
	logger shared.ILogger
	client *minio.Client
}

func newBlobStore(cfg *shared.Config, logger shared.ILogger) IStore {

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Secrets.StorageAccessKey, cfg.Secrets.StorageSecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Errorf("Failed to create blob storage client for '%s': %v", cfg.Storage.Endpoint, err)
		panic(err)
	}

	return &blobStore{cfg, logger, client}
}

func (bs *blobStore) LoadSnapshot(ctx context.Context) (*Snapshot, error) {

	obj, err := bs.client.GetObject(ctx, bs.cfg.Storage.Bucket, bs.cfg.Storage.SnapshotKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot object '%s': %w", bs.cfg.Storage.SnapshotKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot object '%s': %w", bs.cfg.Storage.SnapshotKey, err)
	}

	var snapshot Snapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	sortPosts(snapshot.Posts)
	return &snapshot, nil
}

func (bs *blobStore) CommitPost(ctx context.Context, path string, content []byte) error {

	_, err := bs.client.PutObject(ctx, bs.cfg.Storage.Bucket, path,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/markdown"})
	if err != nil {
		return fmt.Errorf("failed to put post object '%s': %w", path, err)
	}

	bs.logger.Infof("Committed post document: %s", path)
	return nil
}
