package application

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	repo "github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/pkg/apperror"
)

const (
	MsgInvalidCredentials = "Invalid inputs."
	MsgUserExists         = "User exists already, please login instead."
	MsgFetchUsersFailed   = "Fetching users failed, please try again later."
	MsgSignupFailed       = "Signing up failed, please try again later."
	MsgLoginFailed        = "Logging in failed, please try again later."
)

type UserService struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewUserService(repo repo.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Logger: logger}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Store(MsgFetchUsersFailed, err)
	}
	return users, nil
}

// Signup registers a user; an already registered email is rejected with 422.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Store(MsgSignupFailed, err)
	}
	if existing != nil {
		return nil, apperror.Conflict(MsgUserExists)
	}

	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Image:    in.Image,
		Places:   []string{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict(MsgUserExists)
		}
		return nil, apperror.Store(MsgSignupFailed, err)
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user signed up")
	}
	return u, nil
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Store(MsgLoginFailed, err)
	}
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}
	return u, nil
}
