package http

import (
	"github.com/samber/lo"

	"github.com/vovakirdan/sweatmarket-server/internal/proto"
	"github.com/vovakirdan/sweatmarket-server/internal/service/chat"
	"github.com/vovakirdan/sweatmarket-server/internal/service/posts"
	"github.com/vovakirdan/sweatmarket-server/internal/service/profile"
	"github.com/vovakirdan/sweatmarket-server/internal/service/wallet"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

// UserResponse is the signed-in user's own account.
type UserResponse struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Email           *string `json:"email,omitempty"`
	Coins           int64   `json:"coins"`
	Nickname        *string `json:"nickname,omitempty"`
	BirthDate       *string `json:"birth_date,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	Sport           *string `json:"sport,omitempty"`
	TimeWindow      *string `json:"time_window,omitempty"`
	Region          *string `json:"region,omitempty"`
	Goal            *string `json:"goal,omitempty"`
	ProfileComplete bool    `json:"profile_complete"`
	CreatedAt       string  `json:"created_at"`
}

// PublicUserResponse is what other users see of a user.
type PublicUserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Nickname  *string `json:"nickname,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RoomResponse represents a chat room in API responses.
type RoomResponse struct {
	ID        int64               `json:"id"`
	User1ID   int64               `json:"user1_id"`
	User2ID   int64               `json:"user2_id"`
	CreatedAt string              `json:"created_at"`
	Other     *PublicUserResponse `json:"other,omitempty"`
}

// ConversationResponse is a room with its full history.
type ConversationResponse struct {
	Room     RoomResponse      `json:"room"`
	Messages []proto.ChatEvent `json:"messages"`
}

// PostResponse is a feed entry.
type PostResponse struct {
	ID        int64              `json:"id"`
	Caption   string             `json:"caption"`
	ImageURL  *string            `json:"image_url,omitempty"`
	CreatedAt string             `json:"created_at"`
	Author    PublicUserResponse `json:"author"`
}

// CommentResponse is a comment on a post.
type CommentResponse struct {
	ID        int64              `json:"id"`
	Content   string             `json:"content"`
	CreatedAt string             `json:"created_at"`
	Author    PublicUserResponse `json:"author"`
}

// PostDetailResponse is a post with its comments.
type PostDetailResponse struct {
	PostResponse
	Comments []CommentResponse `json:"comments"`
}

// TxResponse is a wallet ledger entry.
type TxResponse struct {
	ID        int64  `json:"id"`
	Amount    int64  `json:"amount"`
	Kind      string `json:"kind"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// WalletResponse is a balance with its ledger.
type WalletResponse struct {
	Coins int64        `json:"coins"`
	Txs   []TxResponse `json:"txs"`
	Demo  bool         `json:"demo"`
}

// OrderResponse is one order of the book.
type OrderResponse struct {
	ID        int64  `json:"id"`
	Side      string `json:"side"`
	Price     int64  `json:"price"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// BookResponse is the order book.
type BookResponse struct {
	Buys  []OrderResponse `json:"buys"`
	Sells []OrderResponse `json:"sells"`
	Demo  bool            `json:"demo"`
}

func userToResponse(u *store.User) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Coins:           u.Coins,
		Nickname:        u.Nickname,
		Gender:          u.Gender,
		AvatarURL:       u.AvatarURL,
		Sport:           u.Sport,
		TimeWindow:      u.TimeWindow,
		Region:          u.Region,
		Goal:            u.Goal,
		ProfileComplete: profile.Complete(u),
		CreatedAt:       proto.FormatTime(u.CreatedAt),
	}
	if u.BirthDate != nil {
		birth := u.BirthDate.Format(validation.DateLayout)
		resp.BirthDate = &birth
	}
	return resp
}

func publicUser(u *store.User) PublicUserResponse {
	if u == nil {
		return PublicUserResponse{}
	}
	return PublicUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
	}
}

func roomToResponse(r *store.Room, other *store.User) RoomResponse {
	resp := RoomResponse{
		ID:        r.ID,
		User1ID:   r.User1ID,
		User2ID:   r.User2ID,
		CreatedAt: proto.FormatTime(r.CreatedAt),
	}
	if other != nil {
		pu := publicUser(other)
		resp.Other = &pu
	}
	return resp
}

func roomSummariesToResponse(rooms []chat.RoomSummary) []RoomResponse {
	return lo.Map(rooms, func(s chat.RoomSummary, _ int) RoomResponse {
		return roomToResponse(s.Room, s.Other)
	})
}

func conversationToResponse(conv *chat.Conversation) ConversationResponse {
	return ConversationResponse{
		Room: roomToResponse(conv.Room, conv.Other),
		Messages: lo.Map(conv.Messages, func(m *store.Message, _ int) proto.ChatEvent {
			return proto.ChatEventFromMessage(m)
		}),
	}
}

func postToResponse(e posts.Entry) PostResponse {
	return PostResponse{
		ID:        e.Post.ID,
		Caption:   e.Post.Caption,
		ImageURL:  e.Post.ImageURL,
		CreatedAt: proto.FormatTime(e.Post.CreatedAt),
		Author:    publicUser(e.Author),
	}
}

func postDetailToResponse(d *posts.Detail) PostDetailResponse {
	return PostDetailResponse{
		PostResponse: postToResponse(d.Entry),
		Comments: lo.Map(d.Comments, func(ce posts.CommentEntry, _ int) CommentResponse {
			return CommentResponse{
				ID:        ce.Comment.ID,
				Content:   ce.Comment.Content,
				CreatedAt: proto.FormatTime(ce.Comment.CreatedAt),
				Author:    publicUser(ce.Author),
			}
		}),
	}
}

func walletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		Coins: w.Coins,
		Demo:  w.Demo,
		Txs: lo.Map(w.Txs, func(tx *store.Tx, _ int) TxResponse {
			return TxResponse{
				ID:        tx.ID,
				Amount:    tx.Amount,
				Kind:      tx.Kind,
				Note:      tx.Note,
				CreatedAt: proto.FormatTime(tx.CreatedAt),
			}
		}),
	}
}

func orderToResponse(o *store.Order, _ int) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		Side:      string(o.Side),
		Price:     o.Price,
		Amount:    o.Amount,
		CreatedAt: proto.FormatTime(o.CreatedAt),
	}
}

func bookToResponse(b *wallet.Book) BookResponse {
	return BookResponse{
		Buys:  lo.Map(b.Buys, orderToResponse),
		Sells: lo.Map(b.Sells, orderToResponse),
		Demo:  b.Demo,
	}
}
