package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rateguard/internal/models"
	"rateguard/internal/service"
	"rateguard/pkg/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestFeed(t *testing.T) (*LiveFeed, *service.TickerHub, *auth.JWTManager) {
	t.Helper()
	hub := service.NewTickerHub(zap.NewNop())
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, time.Hour)
	return NewLiveFeed(hub, jwtManager, "127.0.0.1:0", zap.NewNop()), hub, jwtManager
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestLiveFeedRejectsMissingToken(t *testing.T) {
	feed, _, _ := newTestFeed(t)
	srv := httptest.NewServer(http.HandlerFunc(feed.handleLive))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err == nil {
		conn.Close()
		t.Fatal("Expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %v", resp)
	}
}

func TestLiveFeedRejectsInvalidToken(t *testing.T) {
	feed, _, _ := newTestFeed(t)
	srv := httptest.NewServer(http.HandlerFunc(feed.handleLive))
	defer srv.Close()

	header := http.Header{"Authorization": []string{"Bearer not-a-jwt"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err == nil {
		conn.Close()
		t.Fatal("Expected handshake to fail with a bad token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %v", resp)
	}
}

func TestLiveFeedDeliversToAuthenticatedClient(t *testing.T) {
	feed, hub, jwtManager := newTestFeed(t)
	srv := httptest.NewServer(http.HandlerFunc(feed.handleLive))
	defer srv.Close()

	hub.Publish(models.RateQuote{
		Pair:      "EUR/USD",
		Rate:      1.0850,
		Source:    models.RateSourceSimulated,
		FetchedAt: time.Now(),
	})

	token, err := jwtManager.GenerateToken(uuid.New().String(), "trader@example.com")
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err != nil {
		t.Fatalf("Expected handshake to succeed, got %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var quote models.RateQuote
	if err := conn.ReadJSON(&quote); err != nil {
		t.Fatalf("Expected a quote, got %v", err)
	}
	if quote.Pair != "EUR/USD" || quote.Rate != 1.0850 {
		t.Errorf("Unexpected quote %+v", quote)
	}
}

func TestLiveFeedAcceptsQueryTokenFallback(t *testing.T) {
	feed, _, jwtManager := newTestFeed(t)
	srv := httptest.NewServer(http.HandlerFunc(feed.handleLive))
	defer srv.Close()

	token, err := jwtManager.GenerateToken(uuid.New().String(), "trader@example.com")
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("Expected query-param token to authenticate, got %v", err)
	}
	conn.Close()
}
