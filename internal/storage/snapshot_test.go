package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bobmcallan/orange/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTables() tables {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	t := newTables()
	t.users["alice"] = &models.User{
		Username:     "alice",
		PasswordHash: "$2a$04$hash",
		FirstName:    "Alice",
		LastName:     "Liddell",
		Balance:      decimal.RequireFromString("40.25"),
		CreatedAt:    created,
	}
	t.users["admin"] = &models.User{
		Username: "admin",
		Balance:  decimal.NewFromInt(1000),
		IsAdmin:  true,
	}
	t.portfolios["ab12cd34"] = &models.Portfolio{
		ID:       "ab12cd34",
		Owner:    "alice",
		Name:     "p1",
		Strategy: "growth",
		Holdings: map[string]decimal.Decimal{
			"AAPL": decimal.NewFromInt(1),
			"NVDA": decimal.RequireFromString("0.5"),
		},
		CreatedAt: created,
	}
	return t
}

func TestSnapshot_RoundTrip(t *testing.T) {
	in := sampleTables()

	data, err := encodeSnapshot(in, time.Now())
	require.NoError(t, err)

	out, err := decodeSnapshot(data)
	require.NoError(t, err)

	require.Len(t, out.users, 2)
	alice := out.users["alice"]
	assert.Equal(t, "Alice", alice.FirstName)
	assert.Equal(t, "Liddell", alice.LastName)
	assert.Equal(t, "$2a$04$hash", alice.PasswordHash)
	assert.True(t, alice.Balance.Equal(decimal.RequireFromString("40.25")))
	assert.True(t, alice.CreatedAt.Equal(in.users["alice"].CreatedAt))
	assert.True(t, out.users["admin"].IsAdmin)

	require.Len(t, out.portfolios, 1)
	p := out.portfolios["ab12cd34"]
	assert.Equal(t, "alice", p.Owner)
	assert.Equal(t, "p1", p.Name)
	assert.Equal(t, "growth", p.Strategy)
	assert.Equal(t, "1", p.Holdings["AAPL"].String())
	assert.Equal(t, "0.5", p.Holdings["NVDA"].String())
}

func TestSnapshot_ExplicitSchema(t *testing.T) {
	data, err := encodeSnapshot(sampleTables(), time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, float64(models.SnapshotVersion), raw["version"])
	assert.Equal(t, "2026-10-17T00:00:00Z", raw["saved_at"])

	users := raw["users"].([]any)
	assert.Equal(t, "admin", users[0].(map[string]any)["username"], "users are sorted")
	assert.Equal(t, "40.25", users[1].(map[string]any)["balance"], "decimals are strings")

	holdings := raw["portfolios"].([]any)[0].(map[string]any)["holdings"].([]any)
	assert.Equal(t, map[string]any{"ticker": "AAPL", "quantity": "1"}, holdings[0])
}

func TestSnapshot_DecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "\x80\x04\x95pickle"},
		{"wrong version", `{"version":2,"users":[],"portfolios":[]}`},
		{"missing version", `{"users":[],"portfolios":[]}`},
		{"bad balance", `{"version":1,"users":[{"username":"a","balance":"lots"}]}`},
		{"user without name", `{"version":1,"users":[{"balance":"1"}]}`},
		{"bad quantity", `{"version":1,"portfolios":[{"id":"p","holdings":[{"ticker":"AAPL","quantity":"x"}]}]}`},
		{"portfolio without id", `{"version":1,"portfolios":[{"owner":"a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSnapshot([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSnapshot_DecodeDropsNonPositiveHoldings(t *testing.T) {
	data := `{"version":1,"portfolios":[{"id":"p","owner":"a","holdings":[
		{"ticker":"aapl","quantity":"2"},
		{"ticker":"MSFT","quantity":"0"},
		{"ticker":"TSLA","quantity":"-1"}
	]}]}`

	out, err := decodeSnapshot([]byte(data))
	require.NoError(t, err)

	p := out.portfolios["p"]
	assert.Len(t, p.Holdings, 1)
	assert.Equal(t, "2", p.Holdings["AAPL"].String())
}
