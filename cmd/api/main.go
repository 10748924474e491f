package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/stayloft/hotel-bookings/internal/handlers"
	"github.com/stayloft/hotel-bookings/internal/mailer"
	"github.com/stayloft/hotel-bookings/internal/oauth"
	"github.com/stayloft/hotel-bookings/internal/payments"
	"github.com/stayloft/hotel-bookings/internal/repository"
	"github.com/stayloft/hotel-bookings/internal/service"
	"github.com/stayloft/hotel-bookings/pkg/config"
	"github.com/stayloft/hotel-bookings/pkg/database"
	"github.com/stayloft/hotel-bookings/pkg/events"
	"github.com/stayloft/hotel-bookings/pkg/logger"
	"github.com/stayloft/hotel-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		redisOpts.DB = cfg.Redis.DB
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	userRepo := repository.NewUserRepository(pool)
	otpRepo := repository.NewOTPRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	mailService := buildMailer(cfg)
	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey)
	google := oauth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)

	authService := service.NewAuthService(userRepo, otpRepo, mailService, google, eventBus, cfg)
	roomService := service.NewRoomService(roomRepo, eventBus)
	bookingService := service.NewBookingService(bookingRepo, roomRepo, userRepo, gateway, mailService, eventBus, cfg)

	h := handlers.New(authService, roomService, bookingService, rateLimitRepo, cfg)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recover)
	router.Use(middleware.Health)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(h.OTPRateLimit).Post("/signup", h.Signup)
			r.Post("/verify-otp", h.VerifyOTP)
			r.Post("/login", h.Login)
			r.With(h.OTPRateLimit).Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
			r.Get("/google", h.GoogleRedirect)
			r.Get("/google/callback", h.GoogleCallback)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Get("/me", h.Me)
				r.Put("/update-profile", h.UpdateProfile)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.ListRooms)
			r.Get("/{id}", h.GetRoom)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth, h.RequireAdmin)
				r.Post("/", h.CreateRoom)
				r.Put("/{id}", h.UpdateRoom)
				r.Delete("/{id}", h.DeleteRoom)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Post("/create-order", h.CreateOrder)
			r.Post("/", h.CreateBooking)
			r.Get("/my-bookings", h.MyBookings)
			r.Get("/{id}", h.GetBooking)
			r.Delete("/{id}", h.CancelBooking)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.SMTPFromName, cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPass,
			cfg.Email.SMTPUseTLS,
		)
	}
}
