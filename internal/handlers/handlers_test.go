package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stayloft/hotel-bookings/internal/domain"
	"github.com/stayloft/hotel-bookings/internal/handlers"
	"github.com/stayloft/hotel-bookings/internal/payments"
	"github.com/stayloft/hotel-bookings/internal/repository"
	"github.com/stayloft/hotel-bookings/internal/service"
	"github.com/stayloft/hotel-bookings/pkg/auth"
	"github.com/stayloft/hotel-bookings/pkg/config"
)

// ---------- Mocks ----------

type mockAuthService struct {
	users     map[int64]*domain.User
	loginResp *domain.LoginResponse
	loginErr  error
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{users: make(map[int64]*domain.User)}
}

func (m *mockAuthService) Signup(_ context.Context, req *domain.SignupRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &domain.User{ID: 1, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}, nil
}

func (m *mockAuthService) VerifyOTP(context.Context, *domain.VerifyOTPRequest) (*domain.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockAuthService) Login(context.Context, *domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResp, nil
}

func (m *mockAuthService) ForgotPassword(context.Context, string) error { return nil }

func (m *mockAuthService) ResetPassword(context.Context, *domain.ResetPasswordRequest) error {
	return nil
}

func (m *mockAuthService) GoogleAuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
}

func (m *mockAuthService) GoogleCallback(context.Context, string) (*domain.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockAuthService) GetUser(_ context.Context, id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockAuthService) UpdateProfile(_ context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	return user, nil
}

type mockRoomService struct {
	rooms     map[int64]*domain.Room
	createErr error
}

func newMockRoomService() *mockRoomService {
	return &mockRoomService{rooms: make(map[int64]*domain.Room)}
}

func (m *mockRoomService) Create(_ context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	room := &domain.Room{ID: int64(len(m.rooms) + 1), Name: req.Name, Price: req.Price, Available: true}
	m.rooms[room.ID] = room
	return room, nil
}

func (m *mockRoomService) Get(_ context.Context, id int64) (*domain.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return room, nil
}

func (m *mockRoomService) List(context.Context, int, int) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range m.rooms {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRoomService) Update(_ context.Context, id int64, _ *domain.UpdateRoomRequest) (*domain.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return room, nil
}

func (m *mockRoomService) Delete(_ context.Context, id int64) error {
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

type mockBookingService struct {
	createErr error
	booking   *domain.Booking
}

func (m *mockBookingService) CreateOrder(_ context.Context, _ int64, req *domain.CreateOrderRequest) (*payments.Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation failed: amount must be a positive number")
	}
	return &payments.Order{ID: "pi_test", ClientSecret: "pi_test_secret", AmountMinor: 24000, Currency: "usd"}, nil
}

func (m *mockBookingService) Create(context.Context, int64, *domain.CreateBookingRequest) (*domain.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.booking, nil
}

func (m *mockBookingService) ListByUser(context.Context, int64, int, int) ([]domain.BookingDTO, error) {
	return []domain.BookingDTO{}, nil
}

func (m *mockBookingService) Get(context.Context, int64, bool, int64) (*domain.Booking, error) {
	if m.booking == nil {
		return nil, repository.ErrNotFound
	}
	return m.booking, nil
}

func (m *mockBookingService) Cancel(context.Context, int64, bool, int64) error { return nil }

type mockRateLimiter struct {
	allowed bool
	keys    []string
}

func (m *mockRateLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allowed, nil
}

// ---------- Setup ----------

const testSecret = "test-secret-at-least-32-bytes-long!"

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      testSecret,
			AccessTokenTTL: time.Hour,
		},
		Frontend: config.FrontendConfig{Origin: "http://localhost:5173"},
	}
}

type fixture struct {
	server   *httptest.Server
	auth     *mockAuthService
	rooms    *mockRoomService
	bookings *mockBookingService
	limiter  *mockRateLimiter
}

func setup(t *testing.T) *fixture {
	t.Helper()

	authSvc := newMockAuthService()
	roomSvc := newMockRoomService()
	bookingSvc := &mockBookingService{}
	limiter := &mockRateLimiter{allowed: true}

	h := handlers.New(authSvc, roomSvc, bookingSvc, limiter, testConfig())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(h.OTPRateLimit).Post("/signup", h.Signup)
			r.Post("/login", h.Login)
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
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &fixture{server: server, auth: authSvc, rooms: roomSvc, bookings: bookingSvc, limiter: limiter}
}

func (f *fixture) addUser(t *testing.T, id int64, isAdmin bool) string {
	t.Helper()
	f.auth.users[id] = &domain.User{
		ID:         id,
		Email:      fmt.Sprintf("user%d@example.com", id),
		IsVerified: true,
		IsAdmin:    isAdmin,
	}
	token, err := auth.NewAccessToken(id, f.auth.users[id].Email, isAdmin, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func wantStatus(t *testing.T, resp *http.Response, want int) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode != want {
		t.Fatalf("Status = %d, want %d (body: %v)", resp.StatusCode, want, body)
	}
	return body
}

// ---------- Tests ----------

func TestRequireAuth_MissingOrBadToken(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodGet, f.server.URL+"/api/auth/me", "", nil)
	wantStatus(t, resp, http.StatusUnauthorized)

	resp = doJSON(t, http.MethodGet, f.server.URL+"/api/auth/me", "not-a-jwt", nil)
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestCreateRoom_NonAdminForbidden(t *testing.T) {
	f := setup(t)
	token := f.addUser(t, 1, false)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/rooms/", token, map[string]interface{}{
		"name": "Seaview Deluxe", "price": 120, "category": "deluxe",
	})
	body := wantStatus(t, resp, http.StatusForbidden)

	if body["error"] != "Admin access required" {
		t.Fatalf("Expected admin error message, got %v", body["error"])
	}
}

func TestCreateRoom_AdminSucceeds(t *testing.T) {
	f := setup(t)
	token := f.addUser(t, 1, true)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/rooms/", token, map[string]interface{}{
		"name": "Seaview Deluxe", "price": 120, "category": "deluxe",
	})
	body := wantStatus(t, resp, http.StatusCreated)

	if body["name"] != "Seaview Deluxe" {
		t.Fatalf("Expected created room, got %v", body)
	}
}

func TestCreateRoom_StaleAdminTokenForbidden(t *testing.T) {
	f := setup(t)
	// Token claims admin, stored record says otherwise
	f.auth.users[1] = &domain.User{ID: 1, Email: "user1@example.com", IsVerified: true, IsAdmin: false}
	staleToken, err := auth.NewAccessToken(1, "user1@example.com", true, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/rooms/", staleToken, map[string]interface{}{
		"name": "Seaview Deluxe", "price": 120, "category": "deluxe",
	})
	wantStatus(t, resp, http.StatusForbidden)
}

func TestListRooms_Public(t *testing.T) {
	f := setup(t)
	f.rooms.rooms[1] = &domain.Room{ID: 1, Name: "Seaview Deluxe", Price: 120, Available: true}

	resp := doJSON(t, http.MethodGet, f.server.URL+"/api/rooms/", "", nil)
	body := wantStatus(t, resp, http.StatusOK)

	if body["count"].(float64) != 1 {
		t.Fatalf("Expected 1 room, got %v", body["count"])
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodGet, f.server.URL+"/api/rooms/42", "", nil)
	wantStatus(t, resp, http.StatusNotFound)

	resp = doJSON(t, http.MethodGet, f.server.URL+"/api/rooms/not-a-number", "", nil)
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := setup(t)
	f.auth.loginErr = service.ErrInvalidCredentials

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/auth/login", "", map[string]string{
		"email": "guest@example.com", "password": "wrong",
	})
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestSignup_RateLimited(t *testing.T) {
	f := setup(t)
	f.limiter.allowed = false

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/auth/signup", "", map[string]string{
		"first_name": "Jordan", "last_name": "Miles",
		"email": "guest@example.com", "password": "correct-horse",
	})
	wantStatus(t, resp, http.StatusTooManyRequests)
}

func TestSignup_ForwardedHeaderDoesNotRotateLimitBuckets(t *testing.T) {
	f := setup(t)

	for _, spoofed := range []string{"10.0.0.1", "10.0.0.2"} {
		req, _ := http.NewRequest(http.MethodPost, f.server.URL+"/api/auth/signup", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", spoofed)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
	}

	if len(f.limiter.keys) != 2 {
		t.Fatalf("Expected 2 rate limit checks, got %d", len(f.limiter.keys))
	}
	if f.limiter.keys[0] != f.limiter.keys[1] {
		t.Fatalf("Spoofed X-Forwarded-For changed the rate limit key: %q vs %q", f.limiter.keys[0], f.limiter.keys[1])
	}
}

func TestSignup_InvalidBody(t *testing.T) {
	f := setup(t)

	req, _ := http.NewRequest(http.MethodPost, f.server.URL+"/api/auth/signup", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestCreateBooking_OverlapMapsToBadRequest(t *testing.T) {
	f := setup(t)
	token := f.addUser(t, 1, false)
	f.bookings.createErr = repository.ErrRoomAlreadyBooked

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/bookings/", token, map[string]interface{}{
		"room_id": 1, "start_date": "2026-09-10", "end_date": "2026-09-12",
		"guest_name": "Jordan Miles", "government_id": "344567kjd",
		"phone_number": "+15550001111", "amount": 240, "payment_id": "pi_abc",
	})
	body := wantStatus(t, resp, http.StatusBadRequest)

	if body["code"] != "ALREADY_BOOKED" {
		t.Fatalf("Expected ALREADY_BOOKED code, got %v", body["code"])
	}
}

func TestCreateBooking_DuplicatePaymentConflict(t *testing.T) {
	f := setup(t)
	token := f.addUser(t, 1, false)
	f.bookings.createErr = repository.ErrDuplicatePayment

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/bookings/", token, map[string]interface{}{
		"room_id": 1, "start_date": "2026-09-10", "end_date": "2026-09-12",
		"guest_name": "Jordan Miles", "government_id": "344567kjd",
		"phone_number": "+15550001111", "amount": 240, "payment_id": "pi_abc",
	})
	wantStatus(t, resp, http.StatusConflict)
}

func TestCreateBooking_UnverifiedPayment(t *testing.T) {
	f := setup(t)
	token := f.addUser(t, 1, false)
	f.bookings.createErr = payments.ErrPaymentNotVerified

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/bookings/", token, map[string]interface{}{
		"room_id": 1, "start_date": "2026-09-10", "end_date": "2026-09-12",
		"guest_name": "Jordan Miles", "government_id": "344567kjd",
		"phone_number": "+15550001111", "amount": 240, "payment_id": "pi_abc",
	})
	body := wantStatus(t, resp, http.StatusBadRequest)

	if body["code"] != "PAYMENT_NOT_VERIFIED" {
		t.Fatalf("Expected PAYMENT_NOT_VERIFIED code, got %v", body["code"])
	}
}

func TestMyBookings_RequiresAuth(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodGet, f.server.URL+"/api/bookings/my-bookings", "", nil)
	wantStatus(t, resp, http.StatusUnauthorized)

	token := f.addUser(t, 1, false)
	resp = doJSON(t, http.MethodGet, f.server.URL+"/api/bookings/my-bookings", token, nil)
	wantStatus(t, resp, http.StatusOK)
}

func TestMe_ReturnsProfile(t *testing.T) {
	f := setup(t)
	token := f.addUser(t, 7, false)

	resp := doJSON(t, http.MethodGet, f.server.URL+"/api/auth/me", token, nil)
	body := wantStatus(t, resp, http.StatusOK)

	if body["email"] != "user7@example.com" {
		t.Fatalf("Expected user7 profile, got %v", body)
	}
}
