package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

// ErrUserNotFound is returned when the wallet owner does not exist.
var ErrUserNotFound = errors.New("user not found")

// Repository is the storage the wallet needs.
type Repository interface {
	store.UserStore
	store.WalletStore
}

// Wallet is a user's balance with ledger entries, newest first.
type Wallet struct {
	Coins int64
	Txs   []*store.Tx
	Demo  bool
}

// Book is the order book: buys best (highest) price first, sells best (lowest) price first.
type Book struct {
	Buys  []*store.Order
	Sells []*store.Order
	Demo  bool
}

// OrderInput is a new order.
type OrderInput struct {
	Side   string `json:"side" form:"side" validate:"required,oneof=buy sell"`
	Price  int64  `json:"price" form:"price" validate:"gt=0"`
	Amount int64  `json:"amount" form:"amount" validate:"gt=0"`
}

// Service provides the wallet and the DEX order book.
type Service struct {
	repo Repository
	demo *demoBook
	log  *zerolog.Logger
}

// NewService creates a wallet service with a freshly seeded demo book.
func NewService(repo Repository, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, demo: newDemoBook(), log: logger}
}

// Wallet returns the balance and ledger of a user.
func (s *Service) Wallet(ctx context.Context, userID int64) (*Wallet, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	txs, err := s.repo.ListTxs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list txs: %w", err)
	}
	return &Wallet{Coins: user.Coins, Txs: txs}, nil
}

// DemoWallet returns the sample wallet shown in demo mode.
func (s *Service) DemoWallet() *Wallet {
	return demoWallet()
}

// Book returns the stored order book. If the store cannot be read the demo
// book is served instead.
func (s *Service) Book(ctx context.Context) *Book {
	buys, err := s.repo.ListOrders(ctx, store.OrderSideBuy)
	if err == nil {
		var sells []*store.Order
		sells, err = s.repo.ListOrders(ctx, store.OrderSideSell)
		if err == nil {
			return &Book{Buys: buys, Sells: sells}
		}
	}
	s.log.Warn().Err(err).Msg("order book unavailable, serving demo book")
	return s.demo.book()
}

// DemoBook returns the in-memory demo book.
func (s *Service) DemoBook() *Book {
	return s.demo.book()
}

// PlaceOrder records an order for a user.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, in OrderInput) (*store.Order, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	order, err := s.repo.CreateOrder(ctx, userID, store.OrderSide(in.Side), in.Price, in.Amount)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.log.Info().
		Int64("user_id", userID).
		Str("side", in.Side).
		Int64("price", in.Price).
		Int64("amount", in.Amount).
		Msg("order placed")
	return order, nil
}

// PlaceDemoOrder appends an order to the demo book. Unknown sides become buys.
func (s *Service) PlaceDemoOrder(in OrderInput) (*store.Order, error) {
	if in.Side != string(store.OrderSideSell) {
		in.Side = string(store.OrderSideBuy)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.demo.add(store.OrderSide(in.Side), in.Price, in.Amount), nil
}
