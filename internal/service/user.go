package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/util"
)

var ErrSelfDelete = errors.New("cannot delete own account")

type UserService struct {
	Repo *repo.Repo
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]models.User, util.Pagination, error) {
	offset, limit := util.Calculate(page, limit)
	if page < 1 {
		page = 1
	}

	users, total, err := s.Repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, util.Pagination{}, err
	}
	return users, util.Paginate(page, limit, total), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.UserByID(ctx, id)
}

// Delete removes a user. The self-delete check runs before any lookup so an
// admin cannot lock themselves out, whatever the target row state.
func (s *UserService) Delete(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return ErrSelfDelete
	}

	if _, err := s.Repo.UserByID(ctx, targetID); err != nil {
		return err
	}

	return s.Repo.DeleteUser(ctx, targetID)
}
