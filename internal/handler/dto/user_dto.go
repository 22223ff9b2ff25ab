package dto

import (
	"time"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// UserDTO представляет участника в ответах API (без пароля)
type UserDTO struct {
	ID              uint       `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	IsApproved      bool       `json:"is_approved"`
	HasSignedWaiver bool       `json:"has_signed_waiver"`
	WaiverSignedAt  *time.Time `json:"waiver_signed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewUserDTO преобразует участника в DTO
func NewUserDTO(user *entity.User) *UserDTO {
	return &UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role,
		IsApproved:      user.IsApproved,
		HasSignedWaiver: user.HasSignedWaiver,
		WaiverSignedAt:  user.WaiverSignedAt,
		CreatedAt:       user.CreatedAt,
	}
}

// NewUserListDTO преобразует список участников в DTO
func NewUserListDTO(users []entity.User) []*UserDTO {
	result := make([]*UserDTO, 0, len(users))
	for i := range users {
		result = append(result, NewUserDTO(&users[i]))
	}
	return result
}
