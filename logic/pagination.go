package logic

import (
	"net/url"
	"strconv"

	"octodon/dal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 40
)

// PageQuery carries the raw cursor parameters of a timeline request.
// All fields are optional; Limit is kept as text because a non-numeric
// value falls back to the default rather than failing.
type PageQuery struct {
	Limit   string
	MaxId   string
	SinceId string
	MinId   string
}

func PageQueryFromValues(values url.Values) PageQuery {
	return PageQuery{
		Limit:   values.Get("limit"),
		MaxId:   values.Get("max_id"),
		SinceId: values.Get("since_id"),
		MinId:   values.Get("min_id"),
	}
}

// Paginate computes the visible page over the newest-first post list.
// It is a pure function: no I/O, never fails.
//
// Exactly one cursor is honored, in precedence order max_id > since_id >
// min_id. A cursor naming an id that is not in the list filters nothing;
// stale client cursors degrade to an unfiltered page.
func Paginate(posts []dal.Post, q PageQuery) []dal.Post {

	res := posts
	if ix := postIndex(posts, q.MaxId); ix >= 0 {
		// Strictly older than max_id
		res = posts[ix+1:]
	} else if ix := postIndex(posts, q.SinceId); ix >= 0 {
		// Strictly newer than since_id
		res = posts[:ix]
	} else if ix := postIndex(posts, q.MinId); ix >= 0 {
		// Strictly newer than min_id, walked from the reference point up
		res = reversed(posts[:ix])
	}

	limit := clampLimit(q.Limit)
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

func postIndex(posts []dal.Post, id string) int {
	if id == "" {
		return -1
	}
	for ix := range posts {
		if posts[ix].Id == id {
			return ix
		}
	}
	return -1
}

func reversed(posts []dal.Post) []dal.Post {
	res := make([]dal.Post, len(posts))
	for ix := range posts {
		res[ix] = posts[len(posts)-1-ix]
	}
	return res
}

func clampLimit(raw string) int {
	if raw == "" {
		return defaultPageSize
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return defaultPageSize
	}
	if limit < 1 {
		return 1
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
