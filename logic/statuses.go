package logic

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"octodon/dal"
	"octodon/dto"
	"octodon/shared"
	"octodon/texts"
)

// IStatusDirectory answers the read endpoints from the snapshot and drives
// the write path. The snapshot is loaded fresh for every call; one call
// never mixes two loads.
type IStatusDirectory interface {
	GetTimeline(ctx context.Context, q PageQuery) ([]*dto.Status, error)
	GetStatus(ctx context.Context, id string) (*dto.Status, error)
	GetAccount(ctx context.Context, id string) (*dto.Account, error)
	GetAccountStatuses(ctx context.Context, id string, q PageQuery) ([]*dto.Status, error)
	GetInstance(ctx context.Context) (*dto.Instance, error)
	CreateStatus(ctx context.Context, req *dto.StatusRequest) (*dto.Status, error)
}

const postDocTemplate = "post.md"

var reWhitespace = regexp.MustCompile(`\s+`)

type statusDirectory struct {
	cfg       *shared.Config
	logger    shared.ILogger
	store     dal.IStore
	txt       texts.ITexts
	metrics   IMetrics
	sanitizer *bluemonday.Policy
	idb       shared.IdBuilder
}

func NewStatusDirectory(
	cfg *shared.Config,
	logger shared.ILogger,
	store dal.IStore,
	txt texts.ITexts,
	metrics IMetrics,
) IStatusDirectory {
	return &statusDirectory{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		txt:       txt,
		metrics:   metrics,
		sanitizer: bluemonday.UGCPolicy(),
		idb:       shared.IdBuilder{Host: cfg.Host},
	}
}

func (sd *statusDirectory) GetTimeline(ctx context.Context, q PageQuery) ([]*dto.Status, error) {
	snapshot, err := sd.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return sd.mapPosts(snapshot, Paginate(snapshot.Posts, q)), nil
}

func (sd *statusDirectory) GetStatus(ctx context.Context, id string) (*dto.Status, error) {
	snapshot, err := sd.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	for ix := range snapshot.Posts {
		if snapshot.Posts[ix].Id == id {
			return sd.mapPost(snapshot, &snapshot.Posts[ix]), nil
		}
	}
	return nil, ErrNotFound
}

func (sd *statusDirectory) GetAccount(ctx context.Context, id string) (*dto.Account, error) {
	snapshot, err := sd.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if id != snapshot.Account.Id {
		return nil, ErrNotFound
	}
	return sd.mapAccount(&snapshot.Account), nil
}

func (sd *statusDirectory) GetAccountStatuses(ctx context.Context, id string, q PageQuery) ([]*dto.Status, error) {
	snapshot, err := sd.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if id != snapshot.Account.Id {
		return nil, ErrNotFound
	}
	return sd.mapPosts(snapshot, Paginate(snapshot.Posts, q)), nil
}

func (sd *statusDirectory) GetInstance(ctx context.Context) (*dto.Instance, error) {
	snapshot, err := sd.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.Instance{
		Uri:         sd.cfg.Host,
		Title:       sd.cfg.Instance.Title,
		Description: sd.cfg.Instance.Description,
		Version:     sd.cfg.Instance.Version,
		Stats: dto.InstanceStats{
			UserCount:   1,
			StatusCount: len(snapshot.Posts),
			DomainCount: 1,
		},
		ContactAccount: sd.mapAccount(&snapshot.Account),
	}, nil
}

// CreateStatus renders the new post into a frontmatter document and commits
// it through the content store. The snapshot is not touched; the post
// becomes visible once the next compile republishes it.
func (sd *statusDirectory) CreateStatus(ctx context.Context, req *dto.StatusRequest) (*dto.Status, error) {

	if strings.TrimSpace(req.Status) == "" {
		return nil, fmt.Errorf("%w: status must not be empty", ErrBadRequest)
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = dal.VisibilityPublic
	}
	switch visibility {
	case dal.VisibilityPublic, dal.VisibilityUnlisted, dal.VisibilityPrivate, dal.VisibilityDirect:
	default:
		return nil, fmt.Errorf("%w: unknown visibility '%s'", ErrBadRequest, visibility)
	}

	now := time.Now().UTC()
	id := fmt.Sprintf("%d", now.UnixMilli())
	content := sd.sanitizer.Sanitize(req.Status)

	doc := sd.txt.WithVals(postDocTemplate, map[string]string{
		"date":       now.Format(time.RFC3339),
		"visibility": visibility,
		"sensitive":  fmt.Sprintf("%t", req.Sensitive),
		"title":      sd.plainExcerpt(content),
		"content":    content,
	})

	path := fmt.Sprintf("posts/%s.md", id)
	if err := sd.store.CommitPost(ctx, path, []byte(doc)); err != nil {
		sd.logger.Errorf("Failed to commit post document '%s': %v", path, err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	sd.metrics.StatusCreated()

	snapshot, err := sd.loadSnapshot(ctx)
	if err != nil {
		// The commit went through; synthesize the status without account details.
		sd.logger.Warnf("Snapshot load after commit failed: %v", err)
		snapshot = &dal.Snapshot{}
	}

	post := dal.Post{
		Id:          id,
		CreatedAt:   now,
		Visibility:  visibility,
		Sensitive:   req.Sensitive,
		ContentHtml: content,
	}
	return sd.mapPost(snapshot, &post), nil
}

func (sd *statusDirectory) loadSnapshot(ctx context.Context) (*dal.Snapshot, error) {
	snapshot, err := sd.store.LoadSnapshot(ctx)
	if err != nil {
		sd.logger.Errorf("Failed to load snapshot: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	sd.metrics.SnapshotLoaded()
	sd.metrics.SnapshotPostCount(len(snapshot.Posts))
	return snapshot, nil
}

func (sd *statusDirectory) mapPosts(snapshot *dal.Snapshot, posts []dal.Post) []*dto.Status {
	res := make([]*dto.Status, 0, len(posts))
	for ix := range posts {
		res = append(res, sd.mapPost(snapshot, &posts[ix]))
	}
	return res
}

func (sd *statusDirectory) mapPost(snapshot *dal.Snapshot, post *dal.Post) *dto.Status {
	return &dto.Status{
		Id:              post.Id,
		CreatedAt:       post.CreatedAt,
		Content:         post.ContentHtml,
		Visibility:      post.Visibility,
		Sensitive:       post.Sensitive,
		Uri:             sd.idb.StatusUri(post.Id),
		Url:             sd.idb.StatusUrl(snapshot.Account.Handle, post.Id),
		RepliesCount:    post.RepliesCount,
		ReblogsCount:    post.BoostsCount,
		FavouritesCount: post.FavoritesCount,
		Account:         sd.mapAccount(&snapshot.Account),
	}
}

func (sd *statusDirectory) mapAccount(account *dal.Account) *dto.Account {
	return &dto.Account{
		Id:            account.Id,
		Username:      account.Handle,
		Acct:          account.Handle,
		DisplayName:   account.DisplayName,
		Note:          account.Note,
		Url:           sd.idb.AccountUrl(account.Handle),
		Avatar:        account.AvatarUrl,
		Header:        account.HeaderUrl,
		CreatedAt:     account.CreatedAt,
		StatusesCount: account.StatusesCount,
	}
}

// plainExcerpt strips markup and collapses whitespace to make a short
// document title out of the post content.
func (sd *statusDirectory) plainExcerpt(contentHtml string) string {
	text := contentHtml
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHtml)); err == nil {
		text = doc.Text()
	}
	text = strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
	return shared.TruncateWithEllipsis(text, shared.MaxTitleLen)
}
