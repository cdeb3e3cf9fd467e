package dal

import "time"

const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// Post is one item in the compiled snapshot. Posts are immutable at request
// time; all counters are baked in when the snapshot is built.
type Post struct {
	Id             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Visibility     string    `json:"visibility"`
	Sensitive      bool      `json:"sensitive"`
	ContentHtml    string    `json:"content_html"`
	RepliesCount   int       `json:"replies_count"`
	BoostsCount    int       `json:"boosts_count"`
	FavoritesCount int       `json:"favorites_count"`
}

// Account is the single content owner as described by the snapshot.
type Account struct {
	Id            string    `json:"id"`
	Handle        string    `json:"handle"`
	DisplayName   string    `json:"display_name"`
	Note          string    `json:"note"`
	AvatarUrl     string    `json:"avatar_url"`
	HeaderUrl     string    `json:"header_url"`
	CreatedAt     time.Time `json:"created_at"`
	StatusesCount int       `json:"statuses_count"`
}

// Snapshot is the unit of consistency: one account plus its posts, ordered
// newest-first. A request must never mix posts from two different loads.
type Snapshot struct {
	Account Account `json:"account"`
	Posts   []Post  `json:"posts"`
}
