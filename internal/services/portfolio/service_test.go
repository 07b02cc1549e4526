package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/bobmcallan/orange/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopBackend struct{}

func (nopBackend) Name() string { return "nop" }
func (nopBackend) ReadSnapshot(context.Context) ([]byte, error) {
	return nil, interfaces.ErrNoSnapshot
}
func (nopBackend) WriteSnapshot(context.Context, []byte) error { return nil }
func (nopBackend) Close() error                                { return nil }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEnv() (*Service, *storage.Store) {
	logger := common.NewSilentLogger()
	store := storage.NewStore(logger, nopBackend{})
	return NewService(store, logger), store
}

func seedUser(store *storage.Store, username string, balance decimal.Decimal) error {
	return store.Update(context.Background(), func(tx interfaces.StateTx) error {
		tx.PutUser(&models.User{Username: username, Balance: balance})
		return nil
	})
}

func balanceOf(t *testing.T, store *storage.Store, username string) decimal.Decimal {
	t.Helper()
	var bal decimal.Decimal
	require.NoError(t, store.View(context.Background(), func(tx interfaces.StateTx) error {
		u, ok := tx.User(username)
		require.True(t, ok)
		bal = u.Balance
		return nil
	}))
	return bal
}

func holdingsOf(t *testing.T, store *storage.Store, id string) map[string]decimal.Decimal {
	t.Helper()
	var h map[string]decimal.Decimal
	require.NoError(t, store.View(context.Background(), func(tx interfaces.StateTx) error {
		p, ok := tx.Portfolio(id)
		require.True(t, ok)
		h = p.Holdings
		return nil
	}))
	return h
}

// scenarioOne sets up alice with 100 cash, portfolio p1 and 1 AAPL bought at 60.
func scenarioOne(t *testing.T) (*Service, *storage.Store, *models.Portfolio) {
	t.Helper()
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", d("100.0")))

	p, err := svc.Create(ctx, "alice", "p1", "growth")
	require.NoError(t, err)

	_, err = svc.Buy(ctx, models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: "aapl", Quantity: d("1"), Price: d("60.0")})
	require.NoError(t, err)
	return svc, store, p
}

func TestScenario1_BuyDebitsBalanceAndAddsHolding(t *testing.T) {
	_, store, p := scenarioOne(t)

	assert.True(t, balanceOf(t, store, "alice").Equal(d("40.0")))
	h := holdingsOf(t, store, p.ID)
	require.Len(t, h, 1)
	assert.True(t, h["AAPL"].Equal(d("1")))
}

func TestScenario2_SellCreditsProceedsAndRemovesHolding(t *testing.T) {
	svc, store, p := scenarioOne(t)

	res, err := svc.Sell(context.Background(), models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: "AAPL", Quantity: d("1"), Price: d("70.0")})
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, "alice").Equal(d("110.0")))
	assert.Empty(t, holdingsOf(t, store, p.ID))
	assert.Equal(t, models.TradeSell, res.Side)
	assert.True(t, res.Amount.Equal(d("70")))
	assert.True(t, res.Balance.Equal(d("110")))
	assert.True(t, res.Holding.IsZero())
}

func TestScenario3_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	svc, store, p := scenarioOne(t)

	_, err := svc.Buy(context.Background(), models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: "TSLA", Quantity: d("10"), Price: d("50.0")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientFunds))

	assert.True(t, balanceOf(t, store, "alice").Equal(d("40.0")))
	h := holdingsOf(t, store, p.ID)
	assert.Len(t, h, 1)
	_, hasTSLA := h["TSLA"]
	assert.False(t, hasTSLA)
}

func TestScenario5_CreateForUnknownOwner(t *testing.T) {
	svc, store := newEnv()

	_, err := svc.Create(context.Background(), "bob", "p", "s")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	require.NoError(t, store.View(context.Background(), func(tx interfaces.StateTx) error {
		assert.Empty(t, tx.Portfolios())
		return nil
	}))
}

func TestBuy_ZeroPriceAlwaysSucceeds(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "broke", decimal.Zero))
	p, err := svc.Create(ctx, "broke", "free", "")
	require.NoError(t, err)

	res, err := svc.Buy(ctx, models.TradeRequest{Owner: "broke", PortfolioID: p.ID, Ticker: "NVDA", Quantity: d("1000"), Price: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, res.Amount.IsZero())
	assert.True(t, balanceOf(t, store, "broke").IsZero())
	assert.True(t, holdingsOf(t, store, p.ID)["NVDA"].Equal(d("1000")))
}

func TestBuy_ExactBalanceAllowed(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", d("40")))
	p, err := svc.Create(ctx, "alice", "p", "")
	require.NoError(t, err)

	_, err = svc.Buy(ctx, models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: "MSFT", Quantity: d("4"), Price: d("10")})
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, "alice").IsZero())
}

func TestTrade_ValidationRejects(t *testing.T) {
	svc, store, p := scenarioOne(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.TradeRequest
	}{
		{"zero quantity", models.TradeRequest{Ticker: "AAPL", Quantity: decimal.Zero, Price: d("1")}},
		{"negative quantity", models.TradeRequest{Ticker: "AAPL", Quantity: d("-1"), Price: d("1")}},
		{"negative price", models.TradeRequest{Ticker: "AAPL", Quantity: d("1"), Price: d("-0.01")}},
		{"blank ticker", models.TradeRequest{Ticker: "  ", Quantity: d("1"), Price: d("1")}},
	}
	for _, tt := range tests {
		tt.req.Owner = "alice"
		tt.req.PortfolioID = p.ID
		t.Run("buy "+tt.name, func(t *testing.T) {
			_, err := svc.Buy(ctx, tt.req)
			assert.True(t, errors.Is(err, models.ErrValidation))
		})
		t.Run("sell "+tt.name, func(t *testing.T) {
			_, err := svc.Sell(ctx, tt.req)
			assert.True(t, errors.Is(err, models.ErrValidation))
		})
	}

	assert.True(t, balanceOf(t, store, "alice").Equal(d("40")))
	assert.True(t, holdingsOf(t, store, p.ID)["AAPL"].Equal(d("1")))
}

func TestSell_MoreThanHeldRejected(t *testing.T) {
	svc, store, p := scenarioOne(t)
	ctx := context.Background()

	for _, ticker := range []string{"AAPL", "GOOG"} {
		_, err := svc.Sell(ctx, models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: ticker, Quantity: d("1.5"), Price: d("10")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInsufficientHoldings), ticker)
	}

	assert.True(t, balanceOf(t, store, "alice").Equal(d("40")))
	h := holdingsOf(t, store, p.ID)
	assert.Len(t, h, 1)
	assert.True(t, h["AAPL"].Equal(d("1")))
}

func TestSell_PartialKeepsRemainder(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", d("100")))
	p, err := svc.Create(ctx, "alice", "p", "")
	require.NoError(t, err)
	_, err = svc.Buy(ctx, models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: "goog", Quantity: d("2.5"), Price: d("4")})
	require.NoError(t, err)

	res, err := svc.Sell(ctx, models.TradeRequest{Owner: "alice", PortfolioID: p.ID, Ticker: "Goog", Quantity: d("1"), Price: d("5")})
	require.NoError(t, err)
	assert.True(t, res.Holding.Equal(d("1.5")))
	assert.True(t, balanceOf(t, store, "alice").Equal(d("95")))
}

func TestTrade_OwnerScoping(t *testing.T) {
	svc, store, p := scenarioOne(t)
	ctx := context.Background()
	require.NoError(t, seedUser(store, "mallory", d("1000")))

	req := models.TradeRequest{Owner: "mallory", PortfolioID: p.ID, Ticker: "AAPL", Quantity: d("1"), Price: d("1")}
	_, err := svc.Buy(ctx, req)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = svc.Sell(ctx, req)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	err = svc.Delete(ctx, "mallory", p.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = svc.Buy(ctx, models.TradeRequest{Owner: "alice", PortfolioID: "missing", Ticker: "AAPL", Quantity: d("1"), Price: d("1")})
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.True(t, balanceOf(t, store, "mallory").Equal(d("1000")))
	assert.True(t, holdingsOf(t, store, p.ID)["AAPL"].Equal(d("1")))
}

func TestDelete(t *testing.T) {
	svc, _, p := scenarioOne(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "alice", p.ID))

	list, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	err = svc.Delete(ctx, "alice", p.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCreate_IDs(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", decimal.Zero))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := svc.Create(ctx, "alice", "p", "")
		require.NoError(t, err)
		assert.Len(t, p.ID, idLength)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestCreate_RetriesOnIDCollision(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", decimal.Zero))

	ids := []string{"aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := svc.Create(ctx, "alice", "one", "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "alice", "two", "")
	require.NoError(t, err)

	assert.Equal(t, "aaaaaaaa", first.ID)
	assert.Equal(t, "bbbbbbbb", second.ID)
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", decimal.Zero))
	svc.newID = func() string { return "samesame" }

	_, err := svc.Create(ctx, "alice", "one", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "two", "")
	assert.Error(t, err)
}

func TestCreate_BlankNameRejected(t *testing.T) {
	svc, store := newEnv()
	require.NoError(t, seedUser(store, "alice", decimal.Zero))

	_, err := svc.Create(context.Background(), "alice", "   ", "x")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestListByOwnerAndResolve(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", decimal.Zero))
	require.NoError(t, seedUser(store, "bob", decimal.Zero))

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	older, err := svc.Create(ctx, "alice", "dup", "first")
	require.NoError(t, err)
	newer, err := svc.Create(ctx, "alice", "dup", "second")
	require.NoError(t, err)
	bobs, err := svc.Create(ctx, "bob", "mine", "")
	require.NoError(t, err)

	list, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.Equal(t, newer.ID, list[1].ID)

	got, err := svc.Resolve(ctx, "alice", "dup")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID, "oldest name match wins")

	got, err = svc.Resolve(ctx, "alice", " "+newer.ID+" ")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = svc.Resolve(ctx, "alice", bobs.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = svc.Resolve(ctx, "alice", "mine")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestResolve_IDBeatsName(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", decimal.Zero))

	ids := []string{"11111111", "22222222"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	named, err := svc.Create(ctx, "alice", "22222222", "")
	require.NoError(t, err)
	target, err := svc.Create(ctx, "alice", "other", "")
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, "alice", "22222222")
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)
	assert.NotEqual(t, named.ID, got.ID)
}

func TestBuyBatch(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", d("25")))
	p, err := svc.Create(ctx, "alice", "p", "")
	require.NoError(t, err)

	batch, err := svc.BuyBatch(ctx, "alice", p.ID, []string{"aapl", "msft", "", "tsla"}, d("1"), d("10"))
	require.NoError(t, err)
	require.Len(t, batch.Lines, 4)

	assert.NoError(t, batch.Lines[0].Err)
	assert.NoError(t, batch.Lines[1].Err)
	assert.True(t, errors.Is(batch.Lines[2].Err, models.ErrValidation))
	assert.True(t, errors.Is(batch.Lines[3].Err, models.ErrInsufficientFunds))
	assert.Equal(t, "TSLA", batch.Lines[3].Ticker)

	assert.Len(t, batch.Filled(), 2)
	assert.True(t, batch.Total().Equal(d("20")))
	assert.True(t, balanceOf(t, store, "alice").Equal(d("5")))
	assert.Len(t, holdingsOf(t, store, p.ID), 2)
}

func TestBuyBatch_WholeBatchErrors(t *testing.T) {
	svc, store := newEnv()
	ctx := context.Background()
	require.NoError(t, seedUser(store, "alice", d("25")))
	p, err := svc.Create(ctx, "alice", "p", "")
	require.NoError(t, err)

	_, err = svc.BuyBatch(ctx, "alice", p.ID, nil, d("1"), d("1"))
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = svc.BuyBatch(ctx, "alice", p.ID, []string{"AAPL"}, decimal.Zero, d("1"))
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = svc.BuyBatch(ctx, "alice", p.ID, []string{"AAPL"}, d("1"), d("-1"))
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = svc.BuyBatch(ctx, "alice", "nope", []string{"AAPL"}, d("1"), d("1"))
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.True(t, balanceOf(t, store, "alice").Equal(d("25")))
}

func TestParseTickers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"AAPL, msft tsla", []string{"AAPL", "MSFT", "TSLA"}},
		{"  nvda  ", []string{"NVDA"}},
		{",, ,", []string{}},
		{"goog;aapl\tmsft", []string{"GOOG", "AAPL", "MSFT"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTickers(tt.in))
		})
	}
}
