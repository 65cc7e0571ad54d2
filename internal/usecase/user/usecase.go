package user

import (
	"context"

	"go.uber.org/zap"

	domain "user-crud-api/internal/domain/user"
	apperrors "user-crud-api/pkg/errors"
	"user-crud-api/pkg/logger"
)

// UserStore defines the storage operations the service depends on.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, SQLite, a cache decorator) to be used interchangeably.
type UserStore interface {
	FindAll(ctx context.Context) ([]domain.User, error)           // All users ordered by id
	FindByID(ctx context.Context, id int64) (*domain.User, error) // NotFoundError when absent
	Save(ctx context.Context, u *domain.User) error               // Insert when new, otherwise update; assigns u.ID
	Delete(ctx context.Context, u *domain.User) error             // NotFoundError when nothing was removed
}

// Usecase implements UserService on top of a UserStore.
type Usecase struct {
	store UserStore   // Store for user persistence
	log   *zap.Logger // Logger for structured logging
}

var _ UserService = (*Usecase)(nil)

// New creates a new instance of Usecase with the provided store and logger.
func New(s UserStore, log *zap.Logger) *Usecase {
	return &Usecase{store: s, log: log}
}

// ListUsers returns every stored user. An empty store yields an empty, non-nil slice.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("listing users")

	domainUsers, err := uc.store.FindAll(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = toDTO(&domainUsers[i])
	}

	log.Info("users listed", zap.Int("count", len(users)))
	return &ListUsersResponse{Users: users}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("getting user", zap.Int64("id", in.ID))

	u, err := uc.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	out := toDTO(u)
	return &out, nil
}

// CreateUser persists a new user and returns it with its assigned ID.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	u := &domain.User{
		Name:  in.Name,
		Email: in.Email,
	}
	if err := uc.store.Save(ctx, u); err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	log.Info("user created", zap.Int64("id", u.ID))
	out := toDTO(u)
	return &out, nil
}

// UpdateUser overwrites name and email of an existing user. The ID never changes.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	u, err := uc.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	u.Name = in.Name
	u.Email = in.Email
	if err := uc.store.Save(ctx, u); err != nil {
		if apperrors.IsNotFound(err) {
			// removed by a concurrent request between lookup and save
			log.Warn("user not found for update", zap.Int64("id", in.ID))
			return nil, err
		}
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to update user", err)
	}

	log.Info("user updated", zap.Int64("id", u.ID))
	out := toDTO(u)
	return &out, nil
}

// DeleteUser permanently removes a user.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	u, err := uc.find(ctx, in.ID)
	if err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, u); err != nil {
		if apperrors.IsNotFound(err) {
			// removed by a concurrent request between lookup and delete
			log.Warn("user not found for deletion", zap.Int64("id", in.ID))
			return err
		}
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return apperrors.NewInternalError("failed to delete user", err)
	}

	log.Info("user deleted", zap.Int64("id", in.ID))
	return nil
}

// find loads a user, passing NotFoundError through untouched and wrapping anything else.
func (uc *Usecase) find(ctx context.Context, id int64) (*domain.User, error) {
	u, err := uc.store.FindByID(ctx, id)
	if err != nil {
		log := logger.WithContext(ctx, uc.log)
		if apperrors.IsNotFound(err) {
			log.Warn("user not found", zap.Int64("id", id))
			return nil, err
		}
		log.Error("failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return u, nil
}

func toDTO(u *domain.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
