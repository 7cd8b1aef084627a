package models

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type User struct {
	ID           string    `gorm:"primaryKey"              json:"id"`
	Username     string    `gorm:"unique;not null"         json:"username"`
	Email        string    `gorm:"unique;not null"         json:"email"`
	PasswordHash string    `gorm:"not null"                json:"-"`
	Role         string    `gorm:"not null;default:USER"   json:"role"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Task struct {
	ID          string     `gorm:"primaryKey"               json:"id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"not null;default:PENDING" json:"status"`
	Priority    string     `gorm:"not null;default:MEDIUM"  json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `gorm:"index;not null"           json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
