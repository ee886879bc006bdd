package services

import (
	"context"
	"strings"

	"shop-service/internal/domain"
)

func (s *ShopService) Authenticate(ctx context.Context, email, password string) (*domain.UserInfo, error) {
	u, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Authenticate(password) {
		return nil, domain.ErrInvalidCredentials
	}
	info := u.Info()
	return &info, nil
}

type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

// Register creates a customer account. Admins are only created by seeding.
func (s *ShopService) Register(ctx context.Context, r Registration) (*domain.UserInfo, error) {
	email := strings.TrimSpace(r.Email)
	if !strings.Contains(email, "@") {
		return nil, domain.Validation("a valid email is required")
	}
	if r.Password == "" {
		return nil, domain.Validation("password is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, domain.Validation("name is required")
	}

	s.accounts.Lock()
	defer s.accounts.Unlock()

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Validation("email %s is already registered", email)
	}
	id, err := s.store.NextUserID(ctx)
	if err != nil {
		return nil, err
	}
	u := domain.NewCustomer(id, email, r.Password, strings.TrimSpace(r.Name), strings.TrimSpace(r.Address))
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	info := u.Info()
	return &info, nil
}
