package domain

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", Validation("unknown role %q", s)
}

// CustomerProfile is set only for RoleCustomer.
type CustomerProfile struct {
	Name    string `json:"name" gorm:"size:255"`
	Address string `json:"address" gorm:"size:512"`
}

// AdminCapabilities is set only for RoleAdmin.
type AdminCapabilities struct {
	ManageInventory bool `json:"manageInventory"`
	ViewAllOrders   bool `json:"viewAllOrders"`
}

// User is a discriminated record: Role decides which of Profile and
// Capabilities is meaningful. Role never changes after creation.
type User struct {
	ID           uint64            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email        string            `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password     string            `json:"-" gorm:"size:255;not null"`
	Role         Role              `json:"role" gorm:"size:16;not null"`
	Profile      CustomerProfile   `json:"profile" gorm:"embedded;embeddedPrefix:customer_"`
	Capabilities AdminCapabilities `json:"capabilities" gorm:"embedded;embeddedPrefix:admin_"`
}

func NewCustomer(id uint64, email, password, name, address string) *User {
	return &User{
		ID:       id,
		Email:    email,
		Password: password,
		Role:     RoleCustomer,
		Profile:  CustomerProfile{Name: name, Address: address},
	}
}

func NewAdmin(id uint64, email, password string) *User {
	return &User{
		ID:           id,
		Email:        email,
		Password:     password,
		Role:         RoleAdmin,
		Capabilities: AdminCapabilities{ManageInventory: true, ViewAllOrders: true},
	}
}

// Authenticate compares the stored password by plain equality.
func (u *User) Authenticate(password string) bool {
	return u.Password == password
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) CanManageInventory() bool {
	return u.IsAdmin() && u.Capabilities.ManageInventory
}

func (u *User) CanViewAllOrders() bool {
	return u.IsAdmin() && u.Capabilities.ViewAllOrders
}

// DisplayName is the name printed on invoices and receipts.
func (u *User) DisplayName() string {
	if u.Role == RoleCustomer && u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Email
}

// UserInfo is the password-free view handed to callers.
type UserInfo struct {
	ID           uint64             `json:"userId"`
	Email        string             `json:"email"`
	Role         Role               `json:"role"`
	Name         string             `json:"name,omitempty"`
	Address      string             `json:"address,omitempty"`
	Capabilities *AdminCapabilities `json:"capabilities,omitempty"`
}

func (u *User) Info() UserInfo {
	info := UserInfo{ID: u.ID, Email: u.Email, Role: u.Role}
	switch u.Role {
	case RoleCustomer:
		info.Name = u.Profile.Name
		info.Address = u.Profile.Address
	case RoleAdmin:
		caps := u.Capabilities
		info.Capabilities = &caps
	}
	return info
}
