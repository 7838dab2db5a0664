package service

import (
	"context"

	"go-commerce-api/internal/model"
	"go-commerce-api/pkg/apierror"
)

// AdminAccountStore extends the account store with the admin-only listing
// and mutation operations.
type AdminAccountStore interface {
	FindByID(ctx context.Context, id string) (model.Account, error)
	List(ctx context.Context, q model.AccountQuery) ([]model.Account, int64, error)
	UpdateRoleStatus(ctx context.Context, id string, role *string, status *string) (model.Account, error)
	Delete(ctx context.Context, id string) error
}

// UserService backs the admin user-management endpoints.
type UserService struct {
	accounts AdminAccountStore
}

func NewUserService(accounts AdminAccountStore) *UserService {
	return &UserService{accounts: accounts}
}

func (s *UserService) List(ctx context.Context, q model.AccountQuery) ([]model.Profile, int64, error) {
	accounts, total, err := s.accounts.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	profiles := make([]model.Profile, 0, len(accounts))
	for _, a := range accounts {
		profiles = append(profiles, a.Profile())
	}
	return profiles, total, nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.Profile, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return account.Profile(), nil
}

func (s *UserService) Update(ctx context.Context, id string, req model.AdminUpdateUserRequest) (model.Profile, error) {
	if req.Role == nil && req.Status == nil {
		return model.Profile{}, apierror.Validation("nothing to update", "")
	}
	if req.Role != nil {
		switch *req.Role {
		case model.RoleCustomer, model.RoleAdmin:
		default:
			return model.Profile{}, apierror.Validation("invalid role", *req.Role)
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case model.StatusActive, model.StatusSuspended, model.StatusPending:
		default:
			return model.Profile{}, apierror.Validation("invalid status", *req.Status)
		}
	}

	account, err := s.accounts.UpdateRoleStatus(ctx, id, req.Role, req.Status)
	if err != nil {
		return model.Profile{}, err
	}
	return account.Profile(), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.accounts.Delete(ctx, id)
}
