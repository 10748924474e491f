package service

import (
	"context"
	"fmt"

	"github.com/stayloft/hotel-bookings/internal/domain"
	"github.com/stayloft/hotel-bookings/internal/repository"
	"github.com/stayloft/hotel-bookings/pkg/events"
	"github.com/stayloft/hotel-bookings/pkg/logger"
)

type RoomService interface {
	Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	Get(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, limit, offset int) ([]domain.Room, error)
	Update(ctx context.Context, id int64, req *domain.UpdateRoomRequest) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

type roomService struct {
	roomRepo repository.RoomRepository
	eventBus events.Publisher
}

func NewRoomService(roomRepo repository.RoomRepository, eventBus events.Publisher) RoomService {
	return &roomService{roomRepo: roomRepo, eventBus: eventBus}
}

func (s *roomService) Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	room, err := s.roomRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.publishRoomEvent(ctx, events.RoomCreated, room)
	return room, nil
}

func (s *roomService) Get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, repository.ErrNotFound
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context, limit, offset int) ([]domain.Room, error) {
	rooms, err := s.roomRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *roomService) Update(ctx context.Context, id int64, req *domain.UpdateRoomRequest) (*domain.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	room, err := s.roomRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.publishRoomEvent(ctx, events.RoomUpdated, room)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, id int64) error {
	return s.roomRepo.Delete(ctx, id)
}

func (s *roomService) publishRoomEvent(ctx context.Context, subject string, room *domain.Room) {
	event := events.RoomEvent{
		RoomID:    room.ID,
		Name:      room.Name,
		Price:     room.Price,
		Available: room.Available,
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish room event", "error", err, "room_id", room.ID)
	}
}
