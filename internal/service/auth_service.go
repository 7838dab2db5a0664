package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-commerce-api/internal/model"
	"go-commerce-api/internal/security"
	"go-commerce-api/pkg/apierror"
)

// AccountStore is the persistence surface the login orchestrator needs. The
// lockout read-modify-write lives behind RecordFailedLogin so the store can
// apply it atomically per account.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (model.Account, error)
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, a model.Account) error
	UpdateProfile(ctx context.Context, id string, upd model.UpdateProfileRequest) (model.Account, error)
	UpdateAddresses(ctx context.Context, id string, addresses []model.Address) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, error)
	RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error
}

type AuthService struct {
	accounts AccountStore
	tokens   *TokenService
	hasher   security.PasswordHasher
	lockout  security.LockoutPolicy
}

func NewAuthService(accounts AccountStore, tokens *TokenService, hasher security.PasswordHasher, lockout security.LockoutPolicy) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, hasher: hasher, lockout: lockout}
}

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateName("firstName", req.FirstName); err != nil {
		return model.AuthResponse{}, err
	}
	if err := validateName("lastName", req.LastName); err != nil {
		return model.AuthResponse{}, err
	}
	if err := validateEmail(req.Email); err != nil {
		return model.AuthResponse{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return model.AuthResponse{}, err
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		return model.AuthResponse{}, apierror.Validation("invalid phone number", "phone")
	}
	if err := validateGender(req.Gender); err != nil {
		return model.AuthResponse{}, err
	}
	if req.DateOfBirth != nil && req.DateOfBirth.After(time.Now()) {
		return model.AuthResponse{}, apierror.Validation("date of birth cannot be in the future", "dateOfBirth")
	}

	exists, err := s.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if exists {
		return model.AuthResponse{}, apierror.Conflict("an account with this email already exists", "email")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		Gender:       req.Gender,
		Role:         model.RoleCustomer,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.AuthResponse{}, apierror.Conflict("an account with this email already exists", "email")
		}
		return model.AuthResponse{}, err
	}

	return s.issue(account)
}

// Login runs the credential check in fixed order: lookup, lockout gate,
// status gate, password verify, then the lockout transition. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, apierror.Validation("email and password are required", "")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrAccountNotFound) {
		return model.AuthResponse{}, invalidCredentials()
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	if s.lockout.Locked(account, now) {
		return model.AuthResponse{}, accountLocked(s.lockout.RetryAfter(account, now))
	}

	if account.Status != model.StatusActive {
		return model.AuthResponse{}, apierror.New("ACCOUNT_INACTIVE",
			"account is not active, please contact support", "", http.StatusUnauthorized)
	}

	match, err := s.hasher.Verify(req.Password, account.PasswordHash)
	if err != nil {
		// A corrupt stored digest: surface as a server fault, not as a
		// failed attempt against the user.
		slog.Error("stored password digest unreadable", "account_id", account.ID, "error", err)
		return model.AuthResponse{}, fmt.Errorf("verify password: %w", err)
	}

	if !match {
		attempts, recErr := s.accounts.RecordFailedLogin(ctx, account.ID, s.lockout.Threshold, now.Add(s.lockout.Duration))
		if recErr != nil && !errors.Is(recErr, model.ErrAccountNotFound) {
			return model.AuthResponse{}, recErr
		}
		if attempts >= s.lockout.Threshold {
			slog.Warn("account locked after repeated failures", "account_id", account.ID, "attempts", attempts)
			return model.AuthResponse{}, accountLocked(s.lockout.Duration)
		}
		return model.AuthResponse{}, invalidCredentials()
	}

	if err := s.accounts.RecordSuccessfulLogin(ctx, account.ID, now); err != nil {
		return model.AuthResponse{}, err
	}

	account = s.lockout.OnSuccessfulAttempt(account, now)
	return s.issue(account)
}

func (s *AuthService) Profile(ctx context.Context, accountID string) (model.Profile, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return model.Profile{}, err
	}
	return account.Profile(), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, req model.UpdateProfileRequest) (model.Profile, error) {
	if req.FirstName != nil {
		if err := validateName("firstName", strings.TrimSpace(*req.FirstName)); err != nil {
			return model.Profile{}, err
		}
	}
	if req.LastName != nil {
		if err := validateName("lastName", strings.TrimSpace(*req.LastName)); err != nil {
			return model.Profile{}, err
		}
	}
	if req.Phone != nil && *req.Phone != "" && !phonePattern.MatchString(*req.Phone) {
		return model.Profile{}, apierror.Validation("invalid phone number", "phone")
	}
	if req.Gender != nil {
		if err := validateGender(*req.Gender); err != nil {
			return model.Profile{}, err
		}
	}
	if req.DateOfBirth != nil && req.DateOfBirth.After(time.Now()) {
		return model.Profile{}, apierror.Validation("date of birth cannot be in the future", "dateOfBirth")
	}

	account, err := s.accounts.UpdateProfile(ctx, accountID, req)
	if err != nil {
		return model.Profile{}, err
	}
	return account.Profile(), nil
}

// ChangePassword re-verifies the current password before accepting the new
// one. Previously issued tokens stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, accountID string, req model.ChangePasswordRequest) error {
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return apierror.Validation("password confirmation does not match", "confirmPassword")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	match, err := s.hasher.Verify(req.CurrentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return apierror.Validation("current password is incorrect", "currentPassword")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.accounts.UpdatePassword(ctx, accountID, hash)
}

func (s *AuthService) AddAddress(ctx context.Context, accountID string, req model.AddressRequest) ([]model.Address, error) {
	if req.Street == "" || req.City == "" || req.State == "" || req.ZipCode == "" {
		return nil, apierror.Validation("street, city, state and zip code are required", "")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	addr := model.Address{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault || len(account.Addresses) == 0,
	}
	if addr.Type == "" {
		addr.Type = "home"
	}
	if addr.Country == "" {
		addr.Country = "Kenya"
	}

	addresses := account.Addresses
	if addr.IsDefault {
		for i := range addresses {
			addresses[i].IsDefault = false
		}
	}
	addresses = append(addresses, addr)

	if err := s.accounts.UpdateAddresses(ctx, accountID, addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AuthService) UpdateAddress(ctx context.Context, accountID string, addressID string, req model.AddressRequest) ([]model.Address, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range account.Addresses {
		if account.Addresses[i].ID == addressID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apierror.NotFound("address not found", addressID)
	}

	addresses := account.Addresses
	addr := &addresses[idx]
	if req.Type != "" {
		addr.Type = req.Type
	}
	if req.Street != "" {
		addr.Street = req.Street
	}
	if req.City != "" {
		addr.City = req.City
	}
	if req.State != "" {
		addr.State = req.State
	}
	if req.ZipCode != "" {
		addr.ZipCode = req.ZipCode
	}
	if req.Country != "" {
		addr.Country = req.Country
	}
	if req.IsDefault {
		for i := range addresses {
			addresses[i].IsDefault = i == idx
		}
	}

	if err := s.accounts.UpdateAddresses(ctx, accountID, addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AuthService) RemoveAddress(ctx context.Context, accountID string, addressID string) ([]model.Address, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	removedDefault := false
	addresses := make([]model.Address, 0, len(account.Addresses))
	found := false
	for _, a := range account.Addresses {
		if a.ID == addressID {
			found = true
			removedDefault = a.IsDefault
			continue
		}
		addresses = append(addresses, a)
	}
	if !found {
		return nil, apierror.NotFound("address not found", addressID)
	}
	if removedDefault && len(addresses) > 0 {
		addresses[0].IsDefault = true
	}

	if err := s.accounts.UpdateAddresses(ctx, accountID, addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AuthService) issue(account model.Account) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      account.Profile(),
	}, nil
}

func invalidCredentials() *apierror.APIError {
	return apierror.New("INVALID_CREDENTIALS", "invalid credentials", "", http.StatusUnauthorized)
}

func accountLocked(retryAfter time.Duration) *apierror.APIError {
	return apierror.New("ACCOUNT_LOCKED",
		"account is temporarily locked due to too many failed login attempts, please try again later",
		fmt.Sprintf("retry_after_seconds=%d", int(retryAfter.Seconds())),
		http.StatusLocked)
}

func validateName(field string, value string) error {
	if len(value) < 2 || len(value) > 50 {
		return apierror.Validation(field+" must be between 2 and 50 characters", field)
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apierror.Validation("invalid email address", "email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 128 {
		return apierror.Validation("password must be between 6 and 128 characters", "password")
	}
	return nil
}

func validateGender(gender string) error {
	switch gender {
	case "", "male", "female", "other", "prefer-not-to-say":
		return nil
	default:
		return apierror.Validation("invalid gender value", "gender")
	}
}
