package gormstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-api/internal/domain/user"
	apperrors "user-crud-api/pkg/errors"
	"user-crud-api/pkg/logger"
)

// UserRepo implements the UserStore interface on top of GORM.
// It runs against any GORM dialect; production uses PostgreSQL.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"` // Unique identifier with auto-increment
	Name  string `gorm:"not null"`                 // User's full name
	Email string `gorm:"not null"`                 // User's email address, duplicates allowed
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// FindAll retrieves every user ordered by ID.
func (r *UserRepo) FindAll(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = toDomain(model)
	}

	return users, nil
}

// FindByID retrieves a user from the database by their unique ID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithContext(ctx, r.log).Debug("user not found in db", zap.Int64("id", id))
			return nil, apperrors.NewUserNotFoundError(id)
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := toDomain(model)
	return &u, nil
}

// Save inserts a new user or overwrites all columns of an existing one.
// For new users the generated ID is written back into u. Updating a row
// that no longer exists returns a NotFoundError and inserts nothing.
func (r *UserRepo) Save(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}

	log := logger.WithContext(ctx, r.log)
	if u.IsNew() {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
			return fmt.Errorf("failed to create user: %w", err)
		}
		u.ID = model.ID
		log.Debug("user created in db", zap.Int64("id", model.ID))
		return nil
	}

	// a map writes empty strings too; struct updates skip zero values
	result := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{"name": model.Name, "email": model.Email})
	if result.Error != nil {
		log.Error("failed to update user in db", zap.Error(result.Error), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewUserNotFoundError(u.ID)
	}

	log.Debug("user updated in db", zap.Int64("id", model.ID))
	return nil
}

// Delete removes a user from the database.
func (r *UserRepo) Delete(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}
	if u.ID <= 0 {
		return apperrors.NewUserNotFoundError(u.ID)
	}

	result := r.db.WithContext(ctx).Delete(&UserSchema{ID: u.ID})
	if result.Error != nil {
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewUserNotFoundError(u.ID)
	}

	logger.WithContext(ctx, r.log).Debug("user deleted in db", zap.Int64("id", u.ID))
	return nil
}

// HealthCheck pings the underlying database connection.
func (r *UserRepo) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func toDomain(model UserSchema) user.User {
	return user.User{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
	}
}
