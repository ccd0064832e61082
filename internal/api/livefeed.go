package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rateguard/internal/service"
	"rateguard/pkg/auth"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	liveFeedWriteTimeout = 10 * time.Second
	liveFeedPingInterval = 30 * time.Second
)

// LiveFeed serves the /rates/live websocket endpoint. It runs on its own
// listener next to the REST app: websocket upgrades need a hijackable
// net/http connection.
type LiveFeed struct {
	hub      *service.TickerHub
	jwt      *auth.JWTManager
	upgrader websocket.Upgrader
	server   *http.Server
	logger   *zap.Logger
}

func NewLiveFeed(hub *service.TickerHub, jwtManager *auth.JWTManager, addr string, logger *zap.Logger) *LiveFeed {
	feed := &LiveFeed{
		hub: hub,
		jwt: jwtManager,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			// The dashboard is served from a different origin in dev.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rates/live", feed.handleLive)
	feed.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return feed
}

// Run blocks serving the websocket listener until Shutdown.
func (f *LiveFeed) Run() error {
	f.logger.Info("Live rate feed listening", zap.String("addr", f.server.Addr))
	if err := f.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (f *LiveFeed) Shutdown(ctx context.Context) error {
	return f.server.Shutdown(ctx)
}

// bearerToken pulls the JWT from the Authorization header, falling back
// to the token query parameter because browser websocket clients cannot
// set headers on the handshake.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (f *LiveFeed) handleLive(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}
	claims, err := f.jwt.ValidateToken(token)
	if err != nil {
		f.logger.Warn("Ticker subscriber rejected", zap.Error(err))
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, unsubscribe := f.hub.Subscribe()
	defer unsubscribe()

	f.logger.Info("Ticker subscriber connected",
		zap.String("user_id", claims.UserID),
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Int("subscribers", f.hub.SubscriberCount()))

	// Reader goroutine only drains control frames and detects disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(liveFeedPingInterval)
	defer ping.Stop()

	for {
		select {
		case quote, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(liveFeedWriteTimeout))
			if err := conn.WriteJSON(quote); err != nil {
				f.logger.Debug("Ticker subscriber write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(liveFeedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
