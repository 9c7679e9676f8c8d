package app

import (
	"log"
	"net/http"

	"bitmore/config"
	"bitmore/internal/database"
	"bitmore/internal/handler"
	"bitmore/internal/middleware"
	"bitmore/internal/newsclient"
	"bitmore/internal/repository"
	"bitmore/internal/service"
	"bitmore/pkg/email"
	"bitmore/pkg/fetchlock"
	"bitmore/pkg/googleauth"
	"bitmore/pkg/security"

	"github.com/gorilla/mux"
)

type Application struct {
	Router         *mux.Router
	Config         *config.Config
	DBManager      *database.Manager
	AuthHandler    *handler.AuthHandler
	NewsHandler    *handler.NewsHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func New(cfg *config.Config) (*Application, error) {
	dbConfig := database.Config{
		ConnectionString: cfg.DatabaseURL,
		Host:             cfg.DBHost,
		Port:             cfg.DBPort,
		User:             cfg.DBUser,
		Password:         cfg.DBPassword,
		DBName:           cfg.DBName,
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, err
	}

	db := dbManager.GetDB()
	userRepository := repository.NewUserRepository(db)
	articleRepository := repository.NewArticleRepository(db)

	tokenManager, err := security.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	var emailService email.Service
	smtpService, err := email.NewSMTPService(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom,
	)
	if err != nil {
		log.Printf("Warning: Email service initialization failed: %v", err)
		log.Println("OTP delivery will not work without email service")
	} else {
		emailService = smtpService
	}

	googleVerifier := googleauth.NewIDTokenVerifier(cfg.GoogleClientID)
	otpGenerator := security.NewOTPGenerator()
	newsFetcher := newsclient.New(cfg.NewsAPIKey)
	fetchGuard := fetchlock.NewGuard()

	authService := service.NewAuthService(userRepository, emailService, otpGenerator, tokenManager, googleVerifier)
	newsService := service.NewNewsService(articleRepository, newsFetcher, fetchGuard, cfg.NewsFetchEnabled)

	authMiddleware := middleware.NewAuthMiddleware(tokenManager)
	authHandler := handler.NewAuthHandler(authService)
	newsHandler := handler.NewNewsHandler(newsService)
	router := mux.NewRouter()

	app := &Application{
		Router:         router,
		Config:         cfg,
		DBManager:      dbManager,
		AuthHandler:    authHandler,
		NewsHandler:    newsHandler,
		AuthMiddleware: authMiddleware,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

func (a *Application) setupMiddleware() {
	a.Router.Use(securityHeadersMiddleware())
}

func securityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

func (a *Application) setupRoutes() {
	users := a.Router.PathPrefix("/api/users").Subrouter()
	users.HandleFunc("/username-availability/", a.AuthHandler.UsernameAvailability).Methods("GET")
	users.HandleFunc("/register/", a.AuthHandler.Register).Methods("POST")
	users.HandleFunc("/verify-otp/", a.AuthHandler.VerifyOTP).Methods("POST")
	users.HandleFunc("/login/", a.AuthHandler.Login).Methods("POST")
	users.HandleFunc("/google/", a.AuthHandler.GoogleLogin).Methods("POST")
	users.HandleFunc("/forgot-password/", a.AuthHandler.ForgotPassword).Methods("POST")
	users.HandleFunc("/reset-password/", a.AuthHandler.ResetPassword).Methods("POST")
	users.HandleFunc("/resend-otp/", a.AuthHandler.ResendOTP).Methods("POST")
	users.HandleFunc("/token-refresh/", a.AuthHandler.RefreshToken).Methods("POST")

	protected := users.PathPrefix("/").Subrouter()
	protected.Use(a.AuthMiddleware.RequireAuth)
	protected.HandleFunc("/me/", a.AuthHandler.Me).Methods("GET")

	news := a.Router.PathPrefix("/api/news").Subrouter()
	news.HandleFunc("/home/", a.NewsHandler.Home).Methods("GET")
	news.HandleFunc("/category/{category}/", a.NewsHandler.Category).Methods("GET")
}

func (a *Application) Close() error {
	if a.DBManager != nil {
		return a.DBManager.Close()
	}
	return nil
}
