package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stayloft/hotel-bookings/internal/payments"
	"github.com/stayloft/hotel-bookings/internal/repository"
	"github.com/stayloft/hotel-bookings/internal/service"
	"github.com/stayloft/hotel-bookings/pkg/auth"
	"github.com/stayloft/hotel-bookings/pkg/config"
	"github.com/stayloft/hotel-bookings/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	authService    service.AuthService
	roomService    service.RoomService
	bookingService service.BookingService
	rateLimitRepo  repository.RateLimitRepository
	config         *config.Config
}

func New(
	authService service.AuthService,
	roomService service.RoomService,
	bookingService service.BookingService,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:    authService,
		roomService:    roomService,
		bookingService: bookingService,
		rateLimitRepo:  rateLimitRepo,
		config:         config,
	}
}

// RequireAuth extracts and validates the bearer token, placing the claims
// in the request context.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
			return
		}

		ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin loads the caller's user record and rejects non-admins.
// Token claims alone are not trusted for the admin flag; the stored record
// is authoritative.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := getClaims(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
			return
		}

		user, err := h.authService.GetUser(r.Context(), claims.Sub)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "Admin access required", "FORBIDDEN")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OTPRateLimit throttles OTP issuance per client IP (fail open).
func (h *Handlers) OTPRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "otp:" + h.clientIP(r)

		allowed, err := h.rateLimitRepo.Allow(r.Context(), key, 5, time.Minute)
		if err != nil {
			logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err)
		} else if !allowed {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMIT_EXCEEDED")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Helper functions
func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// clientIP reads forwarding headers only when a trusted proxy is
// configured; otherwise any client could rotate rate-limit buckets by
// varying X-Forwarded-For.
func (h *Handlers) clientIP(r *http.Request) string {
	if h.config.Server.TrustProxyHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	response := map[string]string{
		"error": message,
		"code":  code,
	}
	writeJSON(w, statusCode, response)
}

// writeServiceError maps service and repository errors onto the HTTP error
// taxonomy.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email already exists", "EMAIL_EXISTS")
	case errors.Is(err, repository.ErrRoomAlreadyBooked):
		writeError(w, http.StatusBadRequest, "Room is already booked for these dates", "ALREADY_BOOKED")
	case errors.Is(err, repository.ErrDuplicatePayment):
		writeError(w, http.StatusConflict, "Payment reference already used", "DUPLICATE_PAYMENT")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
	case errors.Is(err, service.ErrNotVerified):
		writeError(w, http.StatusUnauthorized, "Email not verified", "NOT_VERIFIED")
	case errors.Is(err, service.ErrGoogleAccount):
		writeError(w, http.StatusUnauthorized, "This account uses Google sign-in", "GOOGLE_ACCOUNT")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access denied", "FORBIDDEN")
	case errors.Is(err, service.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP", "INVALID_OTP")
	case errors.Is(err, service.ErrAmountMismatch):
		writeError(w, http.StatusBadRequest, err.Error(), "AMOUNT_MISMATCH")
	case errors.Is(err, payments.ErrPaymentNotVerified):
		writeError(w, http.StatusBadRequest, "Payment could not be verified", "PAYMENT_NOT_VERIFIED")
	case strings.Contains(err.Error(), "validation failed"):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
