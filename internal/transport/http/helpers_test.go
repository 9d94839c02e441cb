package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/sweatmarket-server/internal/auth"
	"github.com/vovakirdan/sweatmarket-server/internal/config"
	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/log"
	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/service/chat"
	"github.com/vovakirdan/sweatmarket-server/internal/service/posts"
	"github.com/vovakirdan/sweatmarket-server/internal/service/profile"
	"github.com/vovakirdan/sweatmarket-server/internal/service/wallet"
	"github.com/vovakirdan/sweatmarket-server/internal/store/sqlite"
)

const testPassword = "Secret1"

type testServer struct {
	*httptest.Server
	registry *core.Registry
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.WSIdleTimeout = 0
	cfg.JWTSecret = "test-secret"
	for _, m := range mutate {
		m(&cfg)
	}

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := log.Nop()
	storage := media.New(cfg.UploadDir, cfg.PublicPrefix, cfg.MaxUploadBytes, logger)
	registry := core.NewRegistry(logger, cfg.WSWriteTimeout)
	publisher := core.NewPublisher(st, registry, logger)
	directory := chat.NewDirectory(st, st, logger)

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}, logger)

	router := NewRouter(Dependencies{
		Config:    cfg,
		Auth:      authService,
		Profiles:  profile.NewService(st, storage, logger),
		Posts:     posts.NewService(st, storage, logger),
		Chat:      chat.NewService(st, directory, publisher, storage, logger),
		Wallet:    wallet.NewService(st, logger),
		Registry:  registry,
		Publisher: publisher,
		Media:     storage,
		Logger:    logger,
	})

	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		registry.CloseAll("test done")
		ts.Close()
	})
	return &testServer{Server: ts, registry: registry}
}

// do sends a JSON request and returns the status and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := stdhttp.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (ts *testServer) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	status, data := ts.do(t, method, path, token, body)
	if out != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
	}
	return status
}

func (ts *testServer) signup(t *testing.T, username string) AuthResponse {
	t.Helper()
	var res AuthResponse
	status := ts.doJSON(t, stdhttp.MethodPost, "/api/signup", "", map[string]string{
		"username": username,
		"password": testPassword,
	}, &res)
	require.Equal(t, stdhttp.StatusCreated, status)
	require.NotEmpty(t, res.Token)
	return res
}

func (ts *testServer) startChat(t *testing.T, token string, other int64) RoomResponse {
	t.Helper()
	var room RoomResponse
	status := ts.doJSON(t, stdhttp.MethodPost, "/api/chat/start", token, map[string]int64{"user_id": other}, &room)
	require.Equal(t, stdhttp.StatusOK, status)
	return room
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}
