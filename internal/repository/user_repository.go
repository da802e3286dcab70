package repository

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// UserRepository implements store.UserStore over the users collection.
type UserRepository struct {
	users  docstore.Collection
	logger *slog.Logger
}

// NewUserRepository creates a UserRepository backed by ds.
// If logger is nil, a default logger will be used.
func NewUserRepository(ds docstore.Store, logger *slog.Logger) *UserRepository {
	if ds == nil {
		panic("document store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{
		users:  ds.Collection(UsersCollection),
		logger: logger.With(slog.String("component", "user_repository")),
	}
}

// Ensure UserRepository implements store.UserStore interface
var _ store.UserStore = (*UserRepository)(nil)

// Create implements store.UserStore.Create. The stored creation time is
// written back to user.CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}

	created, err := r.users.Create(ctx, docstore.Document{
		docstore.FieldID: user.ID,
		"email":          user.Email,
	})
	if err != nil {
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		return mapError("user", "create", store.ErrUserNotFound, err)
	}

	stored, err := decodeUser(created)
	if err != nil {
		return store.NewStoreError("user", "create", "failed to decode stored user", err)
	}
	user.CreatedAt = stored.CreatedAt

	log.Info("user created successfully", slog.String("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapError("user", "get", store.ErrUserNotFound, err)
	}
	return decodeUser(doc)
}

// GetByEmail implements store.UserStore.GetByEmail.
// When several records share an address the first by id is returned.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	docs, err := r.users.FindByField(ctx, "email", email)
	if err != nil {
		log.Error("failed to look up user by email", slog.String("error", err.Error()))
		return nil, mapError("user", "get", store.ErrUserNotFound, err)
	}
	if len(docs) == 0 {
		return nil, store.ErrUserNotFound
	}
	if len(docs) > 1 {
		log.Warn("multiple users share an email address", slog.Int("count", len(docs)))
	}
	return decodeUser(docs[0])
}

// Update implements store.UserStore.Update.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if _, err := r.users.Update(ctx, user.ID, docstore.Document{"email": user.Email}); err != nil {
		return mapError("user", "update", store.ErrUserNotFound, err)
	}
	return nil
}

// Delete implements store.UserStore.Delete.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.users.Delete(ctx, id); err != nil {
		return mapError("user", "delete", store.ErrUserNotFound, err)
	}
	return nil
}
