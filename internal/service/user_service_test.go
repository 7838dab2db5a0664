package service

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-commerce-api/internal/model"
)

type fakeAdminStore struct {
	mu       sync.Mutex
	accounts map[string]model.Account
}

func newFakeAdminStore(accounts ...model.Account) *fakeAdminStore {
	s := &fakeAdminStore{accounts: map[string]model.Account{}}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (f *fakeAdminStore) FindByID(_ context.Context, id string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAdminStore) List(_ context.Context, q model.AccountQuery) ([]model.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Account, 0)
	for _, a := range f.accounts {
		if q.Role != "" && a.Role != q.Role {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(a.Email, strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeAdminStore) UpdateRoleStatus(_ context.Context, id string, role *string, status *string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	if role != nil {
		a.Role = *role
	}
	if status != nil {
		a.Status = *status
	}
	a.UpdatedAt = time.Now().UTC()
	f.accounts[id] = a
	return a, nil
}

func (f *fakeAdminStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return model.ErrAccountNotFound
	}
	delete(f.accounts, id)
	return nil
}

func TestUserService_List(t *testing.T) {
	store := newFakeAdminStore(
		model.Account{ID: "a", Email: "alice@example.com", Role: model.RoleAdmin, Status: model.StatusActive},
		model.Account{ID: "b", Email: "bob@example.com", Role: model.RoleCustomer, Status: model.StatusActive},
		model.Account{ID: "c", Email: "carol@example.com", Role: model.RoleCustomer, Status: model.StatusSuspended},
	)
	svc := NewUserService(store)
	ctx := context.Background()

	profiles, total, err := svc.List(ctx, model.AccountQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, profiles, 3)

	profiles, total, err = svc.List(ctx, model.AccountQuery{Role: model.RoleCustomer, Status: model.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "bob@example.com", profiles[0].Email)
}

func TestUserService_Update(t *testing.T) {
	store := newFakeAdminStore(
		model.Account{ID: "a", Email: "alice@example.com", Role: model.RoleCustomer, Status: model.StatusActive},
	)
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.Update(ctx, "a", model.AdminUpdateUserRequest{})
	requireAPIError(t, err, "VALIDATION_ERROR", http.StatusBadRequest)

	bogus := "superuser"
	_, err = svc.Update(ctx, "a", model.AdminUpdateUserRequest{Role: &bogus})
	requireAPIError(t, err, "VALIDATION_ERROR", http.StatusBadRequest)

	role := model.RoleAdmin
	status := model.StatusSuspended
	profile, err := svc.Update(ctx, "a", model.AdminUpdateUserRequest{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, profile.Role)
	assert.Equal(t, model.StatusSuspended, profile.Status)

	_, err = svc.Update(ctx, "missing", model.AdminUpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestUserService_Delete(t *testing.T) {
	store := newFakeAdminStore(
		model.Account{ID: "a", Email: "alice@example.com", Role: model.RoleCustomer, Status: model.StatusActive},
	)
	svc := NewUserService(store)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "a"))
	assert.ErrorIs(t, svc.Delete(ctx, "a"), model.ErrAccountNotFound)
}
