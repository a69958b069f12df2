package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameProbes = 10000

// CreateUser registers a user directly with an optional password
func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}

	user := &model.User{Username: username, Email: email, Provider: model.ProviderEmail}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		h := string(hash)
		user.PasswordHash = &h
	}

	err := s.store.WithinTx(ctx, func(repos *repository.Container) error {
		if err := s.ensureEmailFree(ctx, repos, email); err != nil {
			return err
		}
		if err := s.ensureUsernameFree(ctx, repos, username); err != nil {
			return err
		}
		return repos.User.Create(ctx, user)
	})
	if err != nil {
		return nil, s.userError("create user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// LinkOrCreateUser creates a user bound to an external identity together
// with its provider link. Either both rows are written or neither is.
func (s *Service) LinkOrCreateUser(ctx context.Context, req model.LinkUserRequest) (*model.User, error) {
	uid := strings.TrimSpace(req.ExternalUID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if uid == "" || email == "" {
		return nil, fmt.Errorf("%w: external identity and email are required", ErrInvalidInput)
	}
	provider := req.Provider
	if provider == "" {
		provider = model.ProviderGoogle
	}

	var user *model.User
	err := s.store.WithinTx(ctx, func(repos *repository.Container) error {
		existing, err := repos.User.GetByFirebaseUID(ctx, uid)
		if err != nil {
			return fmt.Errorf("failed to look up identity: %w", err)
		}
		if existing != nil {
			return ErrIdentityLinked
		}
		if err := s.ensureEmailFree(ctx, repos, email); err != nil {
			return err
		}

		username := strings.TrimSpace(req.Username)
		if username != "" {
			if err := s.ensureUsernameFree(ctx, repos, username); err != nil {
				return err
			}
		} else {
			username, err = s.uniqueUsername(ctx, repos, baseUsername(email, uid))
			if err != nil {
				return err
			}
		}

		user = &model.User{
			Username:    username,
			Email:       email,
			FirebaseUID: &uid,
			Provider:    provider,
		}
		if err := repos.User.Create(ctx, user); err != nil {
			return err
		}

		link := &model.UserProvider{UserID: user.ID, Provider: provider, ProviderUID: &uid}
		if err := repos.User.CreateProvider(ctx, link); err != nil {
			return fmt.Errorf("failed to link provider: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.userError("link user", err)
	}

	s.logger.Info("identity linked",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("provider", provider),
	)
	return user, nil
}

// FederatedLogin records a sign-in for an already linked identity
func (s *Service) FederatedLogin(ctx context.Context, identity model.Identity) (*model.User, error) {
	repos := s.store.Repositories()

	user, err := repos.User.GetByFirebaseUID(ctx, identity.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: identity is not linked to a user", ErrNotFound)
	}

	now := s.now()
	if err := repos.User.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	user.UpdatedAt = now
	return user, nil
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.Repositories().User.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, nil
}

// GetUserByFirebaseUID returns the user linked to an external identity
func (s *Service) GetUserByFirebaseUID(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.store.Repositories().User.GetByFirebaseUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user for identity", ErrNotFound)
	}
	return user, nil
}

// ListUsers returns all users, ErrNotFound when there are none
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Repositories().User.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no users found", ErrNotFound)
	}
	return users, nil
}

// UpdateUser applies profile changes
func (s *Service) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	var user *model.User
	err := s.store.WithinTx(ctx, func(repos *repository.Container) error {
		var err error
		user, err = repos.User.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}

		if req.Username != nil {
			username := strings.TrimSpace(*req.Username)
			if username == "" {
				return fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
			}
			if username != user.Username {
				if err := s.ensureUsernameFree(ctx, repos, username); err != nil {
					return err
				}
				user.Username = username
			}
		}
		if req.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*req.Email))
			if email == "" {
				return fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
			}
			if email != user.Email {
				if err := s.ensureEmailFree(ctx, repos, email); err != nil {
					return err
				}
				user.Email = email
			}
		}

		return repos.User.Update(ctx, user)
	})
	if err != nil {
		return nil, s.userError("update user", err)
	}
	return user, nil
}

// ListProviders returns the identity providers linked to a user
func (s *Service) ListProviders(ctx context.Context, userID int64) ([]model.UserProvider, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	providers, err := s.store.Repositories().User.ListProviders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	if providers == nil {
		providers = []model.UserProvider{}
	}
	return providers, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, repos *repository.Container, email string) error {
	existing, err := repos.User.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, repos *repository.Container, username string) error {
	exists, err := repos.User.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to look up username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}
	return nil
}

// uniqueUsername probes base, base1, base2, ... and returns the first free name
func (s *Service) uniqueUsername(ctx context.Context, repos *repository.Container, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameProbes; i++ {
		exists, err := repos.User.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to look up username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return "", fmt.Errorf("%w: no free username for %q", ErrConflict, base)
}

// baseUsername derives a username from the email local part, or from the
// external identity when the local part is empty
func baseUsername(email, uid string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ToLower(strings.TrimSpace(local))
	if local != "" {
		return local
	}
	if len(uid) > 8 {
		uid = uid[:8]
	}
	return "user_" + uid
}

// userError logs conflicts and maps store-level duplicates onto ErrConflict
func (s *Service) userError(op string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		err = fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if errors.Is(err, ErrConflict) {
		s.logger.Info("user operation rejected", zap.String("op", op), zap.Error(err))
	}
	return err
}
