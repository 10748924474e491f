package domain

import (
	"fmt"
	"strings"
	"time"
)

type RoomCategory string

const (
	RoomStandard  RoomCategory = "standard"
	RoomDeluxe    RoomCategory = "deluxe"
	RoomSuite     RoomCategory = "suite"
	RoomExecutive RoomCategory = "executive"
)

func ParseRoomCategory(s string) (RoomCategory, bool) {
	switch RoomCategory(s) {
	case RoomStandard, RoomDeluxe, RoomSuite, RoomExecutive:
		return RoomCategory(s), true
	default:
		return "", false
	}
}

type Room struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Category    RoomCategory `json:"category"`
	HasAC       bool         `json:"has_ac"`
	HasParking  bool         `json:"has_parking"`
	Available   bool         `json:"available"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type CreateRoomRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	HasAC       bool    `json:"has_ac"`
	HasParking  bool    `json:"has_parking"`
}

type UpdateRoomRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	HasAC       *bool    `json:"has_ac,omitempty"`
	HasParking  *bool    `json:"has_parking,omitempty"`
	Available   *bool    `json:"available,omitempty"`
}

func (r *CreateRoomRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Category == "" {
		r.Category = string(RoomStandard)
	}
}

func (r *CreateRoomRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Price <= 0 {
		return fmt.Errorf("price must be a positive number")
	}
	if _, ok := ParseRoomCategory(r.Category); !ok {
		return fmt.Errorf("invalid room category")
	}
	return nil
}

func (r *UpdateRoomRequest) Validate() error {
	if r.Price != nil && *r.Price <= 0 {
		return fmt.Errorf("price must be a positive number")
	}
	if r.Category != nil {
		if _, ok := ParseRoomCategory(*r.Category); !ok {
			return fmt.Errorf("invalid room category")
		}
	}
	return nil
}
