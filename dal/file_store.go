package dal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"octodon/shared"
)

// fileStore is the local-disk counterpart of blobStore, used in development.
type fileStore struct {
	cfg    *shared.Config
	logger shared.ILogger
}

func newFileStore(cfg *shared.Config, logger shared.ILogger) IStore {
	return &fileStore{cfg, logger}
}

func (fs *fileStore) LoadSnapshot(_ context.Context) (*Snapshot, error) {

	fileName := filepath.Join(fs.cfg.Storage.LocalDir, fs.cfg.Storage.SnapshotKey)
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file '%s': %w", fileName, err)
	}

	var snapshot Snapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	sortPosts(snapshot.Posts)
	return &snapshot, nil
}

func (fs *fileStore) CommitPost(_ context.Context, path string, content []byte) error {

	fileName := filepath.Join(fs.cfg.Storage.LocalDir, path)
	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", fileName, err)
	}
	if err := os.WriteFile(fileName, content, 0644); err != nil {
		return fmt.Errorf("failed to write post file '%s': %w", fileName, err)
	}

	fs.logger.Infof("Committed post document: %s", fileName)
	return nil
}
