package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"serve", "demo"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestDemoCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		wantErr  string
	}{
		{
			name:     "wallet",
			args:     []string{"demo"},
			contains: []string{"INVOICE", "Invoice No: INV-1000", "Spicy ahh Chips x2 @ $2.99 = $5.98", "Total Amount: $7.97", "Payment Method: Digital Wallet (GoPay)"},
		},
		{
			name:     "bank",
			args:     []string{"demo", "--method", "bank", "--details", "9876543210"},
			contains: []string{"Receipt No: RCP-2000", "Bank Debit (****3210)"},
		},
		{
			name:    "unknown method",
			args:    []string{"demo", "--method", "cash"},
			wantErr: "invalid payment method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCommand()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)

	some := corsConfig([]string{"https://shop.example"})
	assert.False(t, some.AllowAllOrigins)
	assert.Equal(t, []string{"https://shop.example"}, some.AllowOrigins)
	assert.Contains(t, some.AllowHeaders, "Idempotency-Key")
}
