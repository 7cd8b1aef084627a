package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrUserExists = errors.New("user already exists")
)

type Repo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

// TaskScope is the ownership filter resolved from the caller's identity.
// Admins see every row; everyone else only their own.
type TaskScope struct {
	UserID string
	Admin  bool
}

func (s TaskScope) apply(q *gorm.DB) *gorm.DB {
	if s.Admin {
		return q
	}
	return q.Where("user_id = ?", s.UserID)
}
