package texts

import (
	"embed"
	"fmt"
	"strings"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_texts.go -package mocks octodon/texts ITexts

//go:embed snippets
var fs embed.FS

type ITexts interface {
	Get(id string) string
	WithVals(id string, vals map[string]string) string
}

func NewTexts() ITexts {
	return &texts{}
}

type texts struct {
}

func (t *texts) Get(id string) string {
	fn := fmt.Sprintf("snippets/%s", id)
	bytes, err := fs.ReadFile(fn)
	if err != nil {
		return ""
	}
	return string(bytes)
}

// WithVals substitutes {{placeholder}} occurrences verbatim; values are
// never escaped, the only snippet is a markdown document.
func (t *texts) WithVals(id string, vals map[string]string) string {
	res := t.Get(id)
	for ph := range vals {
		pattern := fmt.Sprintf("{{%s}}", ph)
		res = strings.ReplaceAll(res, pattern, vals[ph])
	}
	return res
}
