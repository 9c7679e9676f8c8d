package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitmore/internal/domain"
	"bitmore/internal/newsclient"
	"bitmore/pkg/googleauth"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users  map[int]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	r.nextID++
	return user
}

func (r *fakeUserRepo) Create(user *domain.User) (*domain.User, error) {
	return r.add(user), nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(id int) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) UsernameExists(username string) (bool, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) EmailExists(email string) (bool, error) {
	_, err := r.GetByEmail(email)
	return err == nil, nil
}

func (r *fakeUserRepo) SetOTP(userID int, code, purpose string, expiresAt time.Time) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.OTP = &code
	user.OTPPurpose = &purpose
	user.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearOTP(userID int) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.OTP = nil
	user.OTPPurpose = nil
	user.OTPExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) MarkVerified(userID int) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsVerified = true
	return nil
}

func (r *fakeUserRepo) UpdatePassword(userID int, passwordHash string) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// fakeEmailService records every send instead of talking SMTP.
type fakeEmailService struct {
	sent    []sentEmail
	sendErr error
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (s *fakeEmailService) Send(to, subject, body string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// fakeVerifier resolves preset tokens to Google claims.
type fakeVerifier struct {
	tokens map[string]*googleauth.Claims
}

func (v *fakeVerifier) Verify(_ context.Context, rawToken string) (*googleauth.Claims, error) {
	if claims, ok := v.tokens[rawToken]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("unknown token %q", rawToken)
}

// fakeArticleRepo is an in-memory repository.ArticleRepository.
type fakeArticleRepo struct {
	articles []domain.NewsArticle
	nextID   int
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{nextID: 1}
}

func (r *fakeArticleRepo) Upsert(article *domain.NewsArticle) error {
	if err := article.Validate(); err != nil {
		return err
	}

	today := time.Now()

	for i := range r.articles {
		existing := &r.articles[i]
		matched := false
		if article.URL != "" {
			matched = existing.URL == article.URL
		} else {
			matched = existing.URL == "" &&
				existing.Title == article.Title && existing.Category == article.Category
		}
		if matched {
			id := existing.ID
			*existing = *article
			existing.ID = id
			existing.FetchedAt = today
			return nil
		}
	}

	stored := *article
	stored.ID = r.nextID
	stored.FetchedAt = today
	r.nextID++
	r.articles = append(r.articles, stored)
	return nil
}

func (r *fakeArticleRepo) GetByCategory(bucket string, limit int) ([]domain.NewsArticle, error) {
	var out []domain.NewsArticle
	for _, article := range r.articles {
		if article.Category == bucket {
			out = append(out, article)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeArticleRepo) FetchedToday(bucket string) (bool, error) {
	today := time.Now().Format("2006-01-02")
	for _, article := range r.articles {
		if article.Category == bucket && article.FetchedAt.Format("2006-01-02") == today {
			return true, nil
		}
	}
	return false, nil
}

// fakeFetcher returns canned provider items and counts calls.
type fakeFetcher struct {
	items    []newsclient.Item
	fetchErr error
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, categories []string, country, language string) ([]newsclient.Item, error) {
	f.calls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	// Different categories return different stories, like the real provider.
	out := make([]newsclient.Item, len(f.items))
	copy(out, f.items)
	for i := range out {
		if out[i].URL != "" && len(categories) > 0 {
			out[i].URL += "?bucket=" + categories[0]
		}
	}
	return out, nil
}
