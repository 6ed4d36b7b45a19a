package docservice

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/store"
)

// MinQueryRunes is the shortest user search that reaches the store.
const MinQueryRunes = 2

// SearchLimit caps search results.
const SearchLimit = 10

// UserHit is a user search result.
type UserHit struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// SearchUsers finds users other than the caller. Queries shorter than
// MinQueryRunes return an empty list.
func (s *Service) SearchUsers(ctx context.Context, q string, callerID int64) ([]UserHit, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryRunes {
		return []UserHit{}, nil
	}
	users, err := s.db.SearchUsers(ctx, q, callerID, SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]UserHit, len(users))
	for i, u := range users {
		out[i] = UserHit{ID: u.ID, Username: u.Username, FullName: u.FullName(), Email: u.Email}
	}
	return out, nil
}

// SearchDocuments runs a full-text search over the documents userID can
// view. Snippets are sanitised for direct display.
func (s *Service) SearchDocuments(ctx context.Context, q string, userID int64) ([]store.DocumentHit, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryRunes {
		return []store.DocumentHit{}, nil
	}
	hits, err := s.db.SearchDocuments(ctx, userID, q, SearchLimit)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].Snippet = s.preview.Sanitize(hits[i].Snippet)
	}
	if hits == nil {
		hits = []store.DocumentHit{}
	}
	return hits, nil
}

// SearchTags finds tags by name. An empty query lists every tag.
func (s *Service) SearchTags(ctx context.Context, q string) ([]models.Tag, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.db.Tags(ctx)
	}
	return s.db.SearchTags(ctx, q)
}

// Users lists every user, for assignment selects.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.db.Users(ctx)
}
