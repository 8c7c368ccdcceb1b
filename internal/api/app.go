package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/stride-app/stride-server/internal/config"
	"github.com/stride-app/stride-server/internal/database"
	"github.com/stride-app/stride-server/internal/server"
	"github.com/stride-app/stride-server/internal/stats"
	"github.com/stride-app/stride-server/internal/token"
	"github.com/teris-io/shortid"
)

type StrideApp struct {
	log             *log.Logger
	db              database.StrideRepository
	mux             *http.Server
	cs              *server.ChatServer
	tokens          *token.Manager
	stats           stats.StatsProvider
	allowedOrigins  []string
	generateShortId func() (string, error)
}

func NewStrideApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db database.StrideRepository,
	tokens *token.Manager, su stats.StatsProvider, cfg *config.Config) *StrideApp {
	s := &StrideApp{
		log:             logger,
		db:              db,
		cs:              cs,
		tokens:          tokens,
		stats:           su,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /register", s.register)
	mux.HandleFunc("POST /login", s.login)
	mux.Handle("POST /token_verify", s.authMiddleware(s.tokenVerify))
	mux.Handle("POST /api/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/user_info", s.authMiddleware(s.getUserInfo))
	mux.Handle("POST /api/user_info", s.authMiddleware(s.updateUserInfo))
	mux.Handle("GET /api/user_info/check", s.authMiddleware(s.checkUserInfo))
	mux.Handle("GET /api/user_statistic", s.authMiddleware(s.getUserStatistics))
	mux.Handle("POST /api/user_statistic", s.authMiddleware(s.addUserStatistic))
	mux.Handle("GET /api/group_chats", s.authMiddleware(s.getGroupChats))
	mux.Handle("POST /api/group_chats", s.authMiddleware(s.createGroupChat))
	mux.Handle("POST /api/group_chats/{id}/join", s.authMiddleware(s.joinGroupChat))
	mux.Handle("POST /api/group_chats/{id}/add_user", s.authMiddleware(s.addUserToChat))
	mux.Handle("GET /api/group_chats/{id}", s.authMiddleware(s.getGroupChatDetail))
	mux.Handle("POST /api/friends/request", s.authMiddleware(s.createFriendRequest))
	mux.Handle("POST /api/friends/{id}/accept", s.authMiddleware(s.acceptFriendRequest))
	mux.Handle("GET /api/friends", s.authMiddleware(s.listFriends))
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.requestIdHandler(h)
	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *StrideApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *StrideApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
