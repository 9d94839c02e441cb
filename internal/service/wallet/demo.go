package wallet

import (
	"cmp"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

var (
	demoBuyPrices  = []int64{96, 98, 100, 101, 103}
	demoSellPrices = []int64{104, 106, 108, 110}
)

// demoBook is an in-memory order book used when no real data is wanted.
type demoBook struct {
	mu     sync.Mutex
	nextID int64
	orders []*store.Order
}

func newDemoBook() *demoBook {
	b := &demoBook{}
	for _, p := range demoBuyPrices {
		b.add(store.OrderSideBuy, p, randomAmount())
	}
	for _, p := range demoSellPrices {
		b.add(store.OrderSideSell, p, randomAmount())
	}
	return b
}

// randomAmount is uniform in [5, 20].
func randomAmount() int64 {
	return 5 + rand.Int63n(16)
}

func (b *demoBook) add(side store.OrderSide, price, amount int64) *store.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	o := &store.Order{
		ID:        b.nextID,
		Side:      side,
		Price:     price,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	b.orders = append(b.orders, o)
	return o
}

func (b *demoBook) book() *Book {
	b.mu.Lock()
	orders := slices.Clone(b.orders)
	b.mu.Unlock()

	buys, sells := lo.FilterReject(orders, func(o *store.Order, _ int) bool {
		return o.Side == store.OrderSideBuy
	})
	slices.SortStableFunc(buys, func(a, b *store.Order) int { return cmp.Compare(b.Price, a.Price) })
	slices.SortStableFunc(sells, func(a, b *store.Order) int { return cmp.Compare(a.Price, b.Price) })
	return &Book{Buys: buys, Sells: sells, Demo: true}
}

func demoWallet() *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		Coins: 42,
		Demo:  true,
		Txs: []*store.Tx{
			{ID: 3, Kind: "earn", Amount: 10, Note: "Meetup demo", CreatedAt: now.Add(-time.Hour)},
			{ID: 2, Kind: "spend", Amount: -3, Note: "Gold Badge", CreatedAt: now.Add(-3 * time.Hour)},
			{ID: 1, Kind: "bonus", Amount: 5, Note: "Streak", CreatedAt: now.Add(-24 * time.Hour)},
		},
	}
}
