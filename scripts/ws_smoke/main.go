package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/vovakirdan/sweatmarket-server/internal/log"
	"github.com/vovakirdan/sweatmarket-server/internal/proto"
)

type account struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// Signs up two throwaway users, opens a room between them and checks that a
// message sent by one side arrives at the other.
func main() {
	base := flag.String("addr", "http://localhost:8080", "server base URL")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	logger := log.New("info", "console")
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	alice, err := signup(ctx, *base)
	if err != nil {
		logger.Fatal().Err(err).Msg("signup alice")
	}
	bob, err := signup(ctx, *base)
	if err != nil {
		logger.Fatal().Err(err).Msg("signup bob")
	}

	var room struct {
		ID int64 `json:"id"`
	}
	if err := call(ctx, *base+"/api/chat/start", alice.Token, map[string]int64{"user_id": bob.User.ID}, &room); err != nil {
		logger.Fatal().Err(err).Msg("start chat")
	}

	wsBase := strings.Replace(*base, "http", "ws", 1)
	dial := func(a *account) *websocket.Conn {
		url := fmt.Sprintf("%s/ws/chat/%d?token=%s", wsBase, room.ID, a.Token)
		conn, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			logger.Fatal().Err(err).Str("user", a.User.Username).Msg("dial")
		}
		return conn
	}
	connA := dial(alice)
	defer connA.Close(websocket.StatusNormalClosure, "bye")
	connB := dial(bob)
	defer connB.Close(websocket.StatusNormalClosure, "bye")

	if err := wsjson.Write(ctx, connA, proto.InboundFrame{SenderID: &alice.User.ID, Content: *text}); err != nil {
		logger.Fatal().Err(err).Msg("send")
	}

	var ev proto.ChatEvent
	if err := wsjson.Read(ctx, connB, &ev); err != nil {
		logger.Fatal().Err(err).Msg("read")
	}
	logger.Info().
		Int64("room_id", room.ID).
		Int64("message_id", ev.ID).
		Str("type", ev.Type).
		Str("content", ev.Content).
		Str("created_at", ev.CreatedAt).
		Msg("received")

	if ev.Content != *text {
		logger.Error().Str("want", *text).Str("got", ev.Content).Msg("unexpected content")
		os.Exit(1)
	}
}

func signup(ctx context.Context, base string) (*account, error) {
	name := "smoke_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	var acc account
	err := call(ctx, base+"/api/signup", "", map[string]string{"username": name, "password": "Smoke123"}, &acc)
	return &acc, err
}

func call(ctx context.Context, url, token string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
