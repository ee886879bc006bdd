package catalog

import (
	"context"
	"testing"

	"shop-service/internal/domain"
	"shop-service/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	seed := Default()

	require.Len(t, seed.Products, 6)
	assert.Equal(t, "SNACK001", seed.Products[0].SKU)
	assert.Equal(t, "2.99", seed.Products[0].Price.StringFixed(2))
	assert.True(t, seed.Products[0].Active)

	require.Len(t, seed.Users, 2)
	assert.Equal(t, domain.RoleCustomer, seed.Users[0].Role)
	assert.Equal(t, "John Doe", seed.Users[0].DisplayName())
	assert.True(t, seed.Users[1].CanManageInventory())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "products: ["},
		{"bad price", "products:\n  - id: 1\n    sku: X\n    price: cheap\n"},
		{"negative stock", "products:\n  - id: 1\n    sku: X\n    price: \"1\"\n    stock: -2\n"},
		{"bad role", "users:\n  - id: 1\n    email: a@b.c\n    role: owner\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestApply_SkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	seeded, err := Apply(ctx, store, Default())
	require.NoError(t, err)
	assert.True(t, seeded)

	p, err := store.FindProduct(ctx, 1)
	require.NoError(t, err)
	p.Stock = 3
	require.NoError(t, store.SaveProduct(ctx, p))

	seeded, err = Apply(ctx, store, Default())
	require.NoError(t, err)
	assert.False(t, seeded)

	p, err = store.FindProduct(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, p.Stock, "second seed must not overwrite live data")
}
