package dal

import (
	"context"
	"sort"

	"octodon/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_store.go -package mocks octodon/dal IStore

// IStore is the storage collaborator: it retrieves the pre-compiled snapshot
// and commits new post documents for the next compile to pick up.
type IStore interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	CommitPost(ctx context.Context, path string, content []byte) error
}

func NewStore(cfg *shared.Config, logger shared.ILogger) IStore {
	if cfg.Storage.Kind == "file" {
		return newFileStore(cfg, logger)
	}
	return newBlobStore(cfg, logger)
}

// Newest first: created_at descending, id descending on ties.
func sortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].Id > posts[j].Id
	})
}
