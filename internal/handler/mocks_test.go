package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"bitmore/internal/domain"
	"bitmore/internal/middleware"
	"bitmore/internal/newsclient"
	"bitmore/internal/service"
	"bitmore/pkg/fetchlock"
	"bitmore/pkg/googleauth"
	"bitmore/pkg/security"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users  map[int]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) Create(user *domain.User) (*domain.User, error) {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	r.nextID++
	return user, nil
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

// otpFor returns the code currently stored for a username.
func (r *fakeUserRepo) otpFor(t *testing.T, username string) string {
	t.Helper()
	user, err := r.GetByUsername(username)
	if err != nil {
		t.Fatalf("user %s not found", username)
	}
	if user.OTP == nil {
		t.Fatalf("user %s has no OTP", username)
	}
	return *user.OTP
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

func (r *fakeArticleRepo) Upsert(article *domain.NewsArticle) error {
	if err := article.Validate(); err != nil {
		return err
	}
	stored := *article
	r.nextID++
	stored.ID = r.nextID
	stored.FetchedAt = time.Now()
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

// fakeFetcher returns canned provider items.
type fakeFetcher struct {
	items []newsclient.Item
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, categories []string, country, language string) ([]newsclient.Item, error) {
	f.calls++
	out := make([]newsclient.Item, len(f.items))
	copy(out, f.items)
	for i := range out {
		if out[i].URL != "" && len(categories) > 0 {
			out[i].URL += "?bucket=" + categories[0]
		}
	}
	return out, nil
}

type testEnv struct {
	router   *mux.Router
	userRepo *fakeUserRepo
	verifier *fakeVerifier
}

// newTestEnv wires real services over in-memory fakes behind the same routes
// the application registers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newFakeUserRepo()
	verifier := &fakeVerifier{tokens: make(map[string]*googleauth.Claims)}

	tokens, err := security.NewTokenManager(testJWTSecret, 30*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	authService := service.NewAuthService(userRepo, nil, security.NewOTPGenerator(), tokens, verifier)
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	authHandler := NewAuthHandler(authService)

	articleRepo := &fakeArticleRepo{}
	fetcher := &fakeFetcher{items: []newsclient.Item{
		{Title: "Story", Summary: "Summary", URL: "https://example.com/story", Source: "example"},
	}}
	newsService := service.NewNewsService(articleRepo, fetcher, fetchlock.NewGuard(), true)
	newsHandler := NewNewsHandler(newsService)

	router := mux.NewRouter()
	users := router.PathPrefix("/api/users").Subrouter()
	users.HandleFunc("/username-availability/", authHandler.UsernameAvailability).Methods("GET")
	users.HandleFunc("/register/", authHandler.Register).Methods("POST")
	users.HandleFunc("/verify-otp/", authHandler.VerifyOTP).Methods("POST")
	users.HandleFunc("/login/", authHandler.Login).Methods("POST")
	users.HandleFunc("/google/", authHandler.GoogleLogin).Methods("POST")
	users.HandleFunc("/forgot-password/", authHandler.ForgotPassword).Methods("POST")
	users.HandleFunc("/reset-password/", authHandler.ResetPassword).Methods("POST")
	users.HandleFunc("/resend-otp/", authHandler.ResendOTP).Methods("POST")
	users.HandleFunc("/token-refresh/", authHandler.RefreshToken).Methods("POST")

	protected := users.PathPrefix("/").Subrouter()
	protected.Use(authMiddleware.RequireAuth)
	protected.HandleFunc("/me/", authHandler.Me).Methods("GET")

	news := router.PathPrefix("/api/news").Subrouter()
	news.HandleFunc("/home/", newsHandler.Home).Methods("GET")
	news.HandleFunc("/category/{category}/", newsHandler.Category).Methods("GET")

	return &testEnv{router: router, userRepo: userRepo, verifier: verifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

// register creates an account through the public endpoint and returns the
// stored OTP so tests can continue the flow.
func (e *testEnv) register(t *testing.T, username, emailAddr, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/users/register/", map[string]string{
		"username":         username,
		"email":            emailAddr,
		"password":         password,
		"confirm_password": password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	return e.userRepo.otpFor(t, username)
}
