package service

import (
	"context"

	"shop-service/internal/models"
	"shop-service/internal/repository"
)

type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

type UserListFilter struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Count     int
	Page      int
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByFilter(ctx context.Context, f UserListFilter) ([]models.User, error)
	Create(ctx context.Context, in UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

var _ UserService = (*userService)(nil)

type userService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *userService {
	return &userService{repo: repo}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) GetByFilter(ctx context.Context, f UserListFilter) ([]models.User, error) {
	if f.Count <= 0 {
		f.Count = 10
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return s.repo.Users.GetByFilter(ctx, repository.UserFilter{
		Username:  f.Username,
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}, f.Count, f.Page)
}

// Create пре-чекает уникальность username/email до вставки: нарушение —
// бизнес-ошибка, а не голый constraint из БД.
func (s *userService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if existing, err := s.repo.Users.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}

	if existing, err := s.repo.Users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	u := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.repo.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	u, err := s.repo.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	fields := map[string]any{}
	if patch.Username != nil {
		if existing, err := s.repo.Users.GetByUsername(ctx, *patch.Username); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != id {
			return nil, ErrUsernameTaken
		}
		fields["username"] = *patch.Username
	}
	if patch.Email != nil {
		if existing, err := s.repo.Users.GetByEmail(ctx, *patch.Email); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
		fields["email"] = *patch.Email
	}
	if patch.FirstName != nil {
		fields["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		fields["last_name"] = *patch.LastName
	}

	if len(fields) == 0 {
		return u, nil
	}

	if err := s.repo.Users.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Users.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	_, err := s.repo.Users.Delete(ctx, id)
	return err
}
