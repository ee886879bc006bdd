package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type productSeed struct {
	ID          uint64 `yaml:"id"`
	SKU         string `yaml:"sku"`
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Stock       int64  `yaml:"stock"`
	Image       string `yaml:"image"`
	Inactive    bool   `yaml:"inactive"`
}

type userSeed struct {
	ID       uint64 `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
}

type Seed struct {
	Products []domain.Product
	Users    []domain.User
}

// Parse decodes a seed document.
func Parse(data []byte) (*Seed, error) {
	var doc struct {
		Products []productSeed `yaml:"products"`
		Users    []userSeed    `yaml:"users"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seed := &Seed{}
	for _, p := range doc.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: price %q: %w", p.SKU, p.Price, err)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %s: negative stock", p.SKU)
		}
		seed.Products = append(seed.Products, domain.Product{
			ID:          p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			Price:       price,
			Description: p.Description,
			Stock:       p.Stock,
			Active:      !p.Inactive,
			ImageURL:    p.Image,
		})
	}
	for _, u := range doc.Users {
		role, err := domain.ParseRole(u.Role)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Email, err)
		}
		if role == domain.RoleAdmin {
			seed.Users = append(seed.Users, *domain.NewAdmin(u.ID, u.Email, u.Password))
		} else {
			seed.Users = append(seed.Users, *domain.NewCustomer(u.ID, u.Email, u.Password, u.Name, u.Address))
		}
	}
	return seed, nil
}

// Default returns the built-in sample catalog.
func Default() *Seed {
	seed, err := Parse(defaultSeed)
	if err != nil {
		panic(err)
	}
	return seed
}

// Load reads a seed file, or the built-in catalog when path is empty.
func Load(path string) (*Seed, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply writes the seed into store unless the store already holds products,
// so restarting against a populated store never re-seeds it.
func Apply(ctx context.Context, store repository.Store, seed *Seed) (bool, error) {
	existing, err := store.ListProducts(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		log.Printf("Store already has %d products, skipping seed", len(existing))
		return false, nil
	}

	for i := range seed.Products {
		if err := store.SaveProduct(ctx, &seed.Products[i]); err != nil {
			return false, fmt.Errorf("seed product %d: %w", seed.Products[i].ID, err)
		}
	}
	for i := range seed.Users {
		if err := store.SaveUser(ctx, &seed.Users[i]); err != nil {
			return false, fmt.Errorf("seed user %d: %w", seed.Users[i].ID, err)
		}
	}
	log.Printf("Seeded %d products and %d users", len(seed.Products), len(seed.Users))
	return true, nil
}
