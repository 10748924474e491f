package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stayloft/hotel-bookings/internal/domain"
	"github.com/stayloft/hotel-bookings/internal/mailer"
	"github.com/stayloft/hotel-bookings/internal/payments"
	"github.com/stayloft/hotel-bookings/internal/repository"
	"github.com/stayloft/hotel-bookings/internal/utils"
	"github.com/stayloft/hotel-bookings/pkg/config"
	"github.com/stayloft/hotel-bookings/pkg/events"
	"github.com/stayloft/hotel-bookings/pkg/logger"
)

type BookingService interface {
	CreateOrder(ctx context.Context, userID int64, req *domain.CreateOrderRequest) (*payments.Order, error)
	Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.BookingDTO, error)
	Get(ctx context.Context, userID int64, isAdmin bool, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, userID int64, isAdmin bool, id int64) error
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	roomRepo    repository.RoomRepository
	userRepo    repository.UserRepository
	gateway     payments.Gateway
	mailer      mailer.Service
	eventBus    events.Publisher
	config      *config.Config
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	gateway payments.Gateway,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		mailer:      mailer,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *bookingService) CreateOrder(ctx context.Context, userID int64, req *domain.CreateOrderRequest) (*payments.Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation failed: amount must be a positive number")
	}

	order, err := s.gateway.CreateOrder(ctx, minorUnits(req.Amount), s.config.Stripe.Currency)
	if err != nil {
		return nil, err
	}

	event := events.PaymentOrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      userID,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
	}
	if err := s.eventBus.Publish(ctx, events.PaymentOrderCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment order event", "error", err, "order_id", order.ID)
	}

	return order, nil
}

func (s *bookingService) Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := domain.ValidateDates(start, end, domain.Today(time.Now())); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	room, err := s.roomRepo.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room: %w", repository.ErrNotFound)
	}

	expected := room.Price * float64(domain.Nights(start, end))
	if math.Abs(req.Amount-expected) > 0.01 {
		return nil, ErrAmountMismatch
	}

	if s.config.Stripe.VerifyPayments {
		if err := s.gateway.VerifyPayment(ctx, req.PaymentID, minorUnits(req.Amount)); err != nil {
			return nil, err
		}
	}

	booking, err := s.bookingRepo.Create(ctx, &domain.Booking{
		UserID:       userID,
		RoomID:       req.RoomID,
		StartDate:    start,
		EndDate:      end,
		GuestName:    req.GuestName,
		GovernmentID: req.GovernmentID,
		PhoneNumber:  req.PhoneNumber,
		Amount:       req.Amount,
		PaymentID:    req.PaymentID,
	})
	if err != nil {
		return nil, err
	}

	event := events.BookingCreatedEvent{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		RoomID:     booking.RoomID,
		GuestName:  booking.GuestName,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		Amount:     booking.Amount,
		PaymentRef: booking.PaymentID,
		CreatedAt:  booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	// Payment has cleared and the reservation is committed; a notification
	// failure must not lose it.
	if user, err := s.userRepo.FindByID(ctx, userID); err == nil && user != nil {
		if err := s.mailer.SendBookingConfirmation(user.Email, booking.GuestName, room.Name, booking.StartDate, booking.EndDate, booking.Amount); err != nil {
			logger.ErrorContext(ctx, "Failed to send booking confirmation", "error", err, "booking_id", booking.ID)
		}
	} else if err != nil {
		logger.ErrorContext(ctx, "Failed to look up user for confirmation email", "error", err, "user_id", userID)
	}

	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.BookingDTO, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]domain.BookingDTO, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		dtos = append(dtos, *b.ToDTO(utils.MaskGovernmentID(b.GovernmentID)))
	}
	return dtos, nil
}

func (s *bookingService) Get(ctx context.Context, userID int64, isAdmin bool, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, repository.ErrNotFound
	}
	if booking.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, userID int64, isAdmin bool, id int64) error {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return repository.ErrNotFound
	}
	if booking.UserID != userID && !isAdmin {
		return ErrForbidden
	}

	if err := s.bookingRepo.Cancel(ctx, id); err != nil {
		return err
	}

	event := events.BookingCanceledEvent{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		RoomID:     booking.RoomID,
		CanceledAt: time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingCanceled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking canceled event", "error", err, "booking_id", booking.ID)
	}

	return nil
}

// minorUnits converts a decimal amount to the gateway's minor currency
// unit.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
