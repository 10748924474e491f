package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayloft/hotel-bookings/internal/domain"
	"github.com/stayloft/hotel-bookings/internal/mailer"
	"github.com/stayloft/hotel-bookings/internal/oauth"
	"github.com/stayloft/hotel-bookings/internal/repository"
	"github.com/stayloft/hotel-bookings/pkg/auth"
	"github.com/stayloft/hotel-bookings/pkg/config"
	"github.com/stayloft/hotel-bookings/pkg/events"
	"github.com/stayloft/hotel-bookings/pkg/logger"
)

type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, error)
	VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.LoginResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*domain.LoginResponse, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
	mailer   mailer.Service
	google   oauth.Provider
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	mailer mailer.Service,
	google oauth.Provider,
	eventBus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		mailer:   mailer,
		google:   google,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrDuplicateEmail
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueOTP(ctx, user.Email); err != nil {
		// The address cannot receive its code; remove the row so the
		// signup can be retried once mail recovers.
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			logger.ErrorContext(ctx, "Failed to remove user after OTP failure", "error", delErr, "user_id", user.ID)
		}
		return nil, err
	}

	event := events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.UserRegistered, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.consumeOTP(ctx, req.Email, req.OTP); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidOTP
	}

	if !user.IsVerified {
		if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user as verified: %w", err)
		}
		user.IsVerified = true

		event := events.UserVerifiedEvent{
			UserID:     user.ID,
			Email:      user.Email,
			VerifiedAt: time.Now(),
		}
		if err := s.eventBus.Publish(ctx, events.UserVerified, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish user verified event", "error", err, "user_id", user.ID)
		}
	}

	return s.loginResponse(user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsGoogleUser {
		return nil, ErrGoogleAccount
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	return s.loginResponse(user)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return repository.ErrNotFound
	}
	if user.IsGoogleUser {
		return ErrGoogleAccount
	}

	return s.issueOTP(ctx, user.Email)
}

func (s *authService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.consumeOTP(ctx, req.Email, req.OTP); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return ErrInvalidOTP
	}

	passwordHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, passwordHash)
}

func (s *authService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*domain.LoginResponse, error) {
	identity, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Google: %w", err)
	}
	if !identity.EmailVerified {
		return nil, ErrNotVerified
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		firstName, lastName := identity.GivenName, identity.FamilyName
		if firstName == "" {
			firstName = identity.Name
		}
		user, err = s.userRepo.CreateGoogleUser(ctx, firstName, lastName, identity.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		event := events.UserRegisteredEvent{
			UserID:    user.ID,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		}
		if err := s.eventBus.Publish(ctx, events.UserRegistered, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
		}
	} else if !user.IsVerified {
		// The identity provider vouched for the address.
		if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user as verified: %w", err)
		}
		user.IsVerified = true
	}

	return s.loginResponse(user)
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// issueOTP generates a fresh code, stores its hash (superseding any earlier
// code for the address) and emails it. A mail failure is reported to the
// caller; the stored code stays valid so a resend can reuse the flow.
func (s *authService) issueOTP(ctx context.Context, email string) error {
	code, err := domain.GenerateOTPCode()
	if err != nil {
		return err
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	if err := s.otpRepo.Issue(ctx, email, string(codeHash)); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.mailer.SendOTPEmail(email, code); err != nil {
		logger.ErrorContext(ctx, "Failed to send OTP email", "error", err, "email", email)
		return fmt.Errorf("failed to send OTP email: %w", err)
	}

	return nil
}

// consumeOTP validates the supplied code against the latest stored hash and
// deletes it on success. A consumed or expired code fails; a mismatched
// code fails without mutating state, so a retry with the right code inside
// the window still succeeds.
func (s *authService) consumeOTP(ctx context.Context, email, code string) error {
	otp, err := s.otpRepo.Latest(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up otp: %w", err)
	}
	if otp == nil || !otp.ValidAt(time.Now(), s.config.Auth.OTPValidity) {
		return ErrInvalidOTP
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		return ErrInvalidOTP
	}

	if err := s.otpRepo.Consume(ctx, otp.ID); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	return nil
}

func (s *authService) loginResponse(user *domain.User) (*domain.LoginResponse, error) {
	token, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		user.IsAdmin,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Auth.AccessTokenTTL.Seconds()),
		User:        user.ToUserInfo(),
	}, nil
}
