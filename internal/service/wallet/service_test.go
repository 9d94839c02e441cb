package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/store/sqlite"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

func TestDemoBookSeed(t *testing.T) {
	svc := NewService(nil, nil)
	book := svc.DemoBook()

	require.True(t, book.Demo)
	require.Len(t, book.Buys, 5)
	require.Len(t, book.Sells, 4)
	require.EqualValues(t, 103, book.Buys[0].Price)
	require.EqualValues(t, 96, book.Buys[4].Price)
	require.EqualValues(t, 104, book.Sells[0].Price)
	for _, o := range append(book.Buys, book.Sells...) {
		require.GreaterOrEqual(t, o.Amount, int64(5))
		require.LessOrEqual(t, o.Amount, int64(20))
	}

	_, err := svc.PlaceDemoOrder(OrderInput{Side: "whatever", Price: 120, Amount: 3})
	require.NoError(t, err)
	book = svc.DemoBook()
	require.Len(t, book.Buys, 6)
	require.EqualValues(t, 120, book.Buys[0].Price)
}

func TestDemoWallet(t *testing.T) {
	w := NewService(nil, nil).DemoWallet()
	require.True(t, w.Demo)
	require.EqualValues(t, 42, w.Coins)
	require.Equal(t, "Meetup demo", w.Txs[0].Note)
}

func TestWalletAndOrders(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	u, err := st.CreateUser(ctx, "trader_1", nil, "hash")
	require.NoError(t, err)
	_, err = st.AddTx(ctx, u.ID, 25, "earn", "Meetup")
	require.NoError(t, err)

	svc := NewService(st, nil)

	w, err := svc.Wallet(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 25, w.Coins)
	require.Len(t, w.Txs, 1)
	require.False(t, w.Demo)

	_, err = svc.Wallet(ctx, 999)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.PlaceOrder(ctx, u.ID, OrderInput{Side: "hold", Price: 1, Amount: 1})
	require.ErrorIs(t, err, validation.ErrInvalid)
	_, err = svc.PlaceOrder(ctx, u.ID, OrderInput{Side: "buy", Price: 0, Amount: 1})
	require.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.PlaceOrder(ctx, u.ID, OrderInput{Side: "buy", Price: 123, Amount: 7})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, u.ID, OrderInput{Side: "sell", Price: 130, Amount: 2})
	require.NoError(t, err)

	book := svc.Book(ctx)
	require.False(t, book.Demo)
	require.Len(t, book.Buys, 1)
	require.EqualValues(t, 123, book.Buys[0].Price)
	require.Equal(t, store.OrderSideSell, book.Sells[0].Side)
}

func TestBookFallsBackToDemo(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	book := NewService(st, nil).Book(context.Background())
	require.True(t, book.Demo)
	require.NotEmpty(t, book.Buys)
}
