package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ctchen222/Gomoku/internal/api/controller"
	"ctchen222/Gomoku/internal/api/response"
	"ctchen222/Gomoku/internal/api/service"
	"ctchen222/Gomoku/internal/i18n"
	"ctchen222/Gomoku/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine         *gin.Engine
	gameService    service.GameService
	gameController *controller.GameController
	upgrader       websocket.Upgrader
	heartbeat      time.Duration

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewServer builds the HTTP routes. webDir is served at / when non-empty.
func NewServer(gameService service.GameService, gameController *controller.GameController, webDir string) *Server {
	s := &Server{
		engine:         gin.New(),
		gameService:    gameService,
		gameController: gameController,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		heartbeat: 10 * time.Second,
		sessions:  make(map[string]*session.Session),
	}
	s.RegisterHandlers(webDir)
	return s
}

func (s *Server) RegisterHandlers(webDir string) {
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponseContent(c, "ok")
	})
	s.gameController.Register(s.engine.Group("/api"))
	s.engine.GET("/ws", s.handleWebSocket)

	if webDir != "" {
		s.engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(webDir))))
	}
}

// Engine returns the gin engine to mount on an http.Server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// CloseSessions closes every open WebSocket session.
func (s *Server) CloseSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

// SessionCount returns the number of open WebSocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// handleWebSocket binds a connection to the game named by gameId, creating a
// new game when none is given, and serves it until the client leaves.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	gameID := c.Query("gameId")
	if gameID == "" {
		g, err := s.gameService.Create(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create game for websocket", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to create game")
			response.ErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		gameID = g.ID
	}
	span.SetAttributes(attribute.String("game.id", gameID))

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	sess := session.New(gameID, conn, s.gameService,
		session.WithPrinter(i18n.Printer(i18n.ResolveTag(r))),
		session.WithHeartbeat(s.heartbeat),
	)
	s.track(sess)
	defer s.untrack(sess)

	slog.InfoContext(ctx, "Session opened", "session.id", sess.ID, "game.id", gameID)
	sess.Run(context.WithoutCancel(ctx))
}

func (s *Server) track(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *Server) untrack(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.ID)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"http.method", c.Request.Method,
			"http.path", c.Request.URL.Path,
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			slog.ErrorContext(c.Request.Context(), "Request failed", append(attrs, "error", c.Errors.String())...)
			return
		}
		slog.DebugContext(c.Request.Context(), "Request served", attrs...)
	}
}
