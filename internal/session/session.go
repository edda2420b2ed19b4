// Package session drives one game over one WebSocket connection.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ctchen222/Gomoku/internal/api/models"
	"ctchen222/Gomoku/internal/api/service"
	"ctchen222/Gomoku/internal/i18n"
	"ctchen222/Gomoku/internal/validator"
	"ctchen222/Gomoku/pkg/proto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"
)

const defaultHeartbeatInterval = 10 * time.Second

var tracer = otel.Tracer("session")

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Session binds a connection to one stored game.
type Session struct {
	ID     string
	GameID string

	conn        Connection
	gameService service.GameService
	printer     *message.Printer
	heartbeat   time.Duration

	writeMu sync.Mutex
	done    chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithPrinter sets the printer used for labels and messages.
func WithPrinter(p *message.Printer) Option {
	return func(s *Session) { s.printer = p }
}

// WithHeartbeat sets the ping interval. Zero disables pings.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Session) { s.heartbeat = d }
}

// New creates a session for gameID on conn.
func New(gameID string, conn Connection, gameService service.GameService, opts ...Option) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		GameID:      gameID,
		conn:        conn,
		gameService: gameService,
		printer:     i18n.Printer(i18n.Default()),
		heartbeat:   defaultHeartbeatInterval,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sends the current game, then serves the connection until it closes.
func (s *Session) Run(ctx context.Context) {
	g, err := s.gameService.Get(ctx, s.GameID)
	if err != nil {
		s.sendError(ctx, err)
		s.conn.Close()
		return
	}
	s.sendUpdate(ctx, g)

	if s.heartbeat > 0 {
		go s.pingLoop(ctx)
	}
	s.ReadPump(ctx)
}

// ReadPump reads frames from the connection and handles them in order.
// It returns once the connection fails or ctx is cancelled.
func (s *Session) ReadPump(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "session.ReadPump", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("game.id", s.GameID),
	))
	defer span.End()

	defer func() {
		close(s.done)
		s.conn.Close()
		slog.InfoContext(ctx, "Session closed", "session.id", s.ID, "game.id", s.GameID)
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Session connection error", "session.id", s.ID, "game.id", s.GameID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Session connection error")
			}
			return
		}
		s.HandleMessage(ctx, msg)
	}
}

// HandleMessage handles one client frame. It acts as a dispatcher.
func (s *Session) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "session.HandleMessage", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("game.id", s.GameID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &msg); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "session.id", s.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		s.sendReason(ctx, ReasonInvalidMessage)
		return
	}

	if err := validator.Struct(msg); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "session.id", s.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		s.sendReason(ctx, ReasonInvalidMessage)
		return
	}

	span.SetAttributes(attribute.String("message.type", msg.Type))

	var (
		g   models.Game
		err error
	)
	switch msg.Type {
	case proto.TypeMove:
		g, err = s.gameService.Play(ctx, s.GameID, msg.Position[0], msg.Position[1])
	case proto.TypeReset:
		g, err = s.gameService.Reset(ctx, s.GameID)
	case proto.TypeState:
		g, err = s.gameService.Get(ctx, s.GameID)
	}
	if err != nil {
		s.sendError(ctx, err)
		return
	}
	s.sendUpdate(ctx, g)
}

// Done is closed once the read loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				slog.WarnContext(ctx, "Failed to send ping, assuming disconnect", "session.id", s.ID, "error", err)
				s.conn.Close()
				return
			}
		}
	}
}

func (s *Session) sendUpdate(ctx context.Context, g models.Game) {
	st := g.State
	s.send(ctx, &proto.ServerToClientMessage{
		Type:               proto.TypeUpdate,
		GameID:             g.ID,
		Board:              st.Board,
		Next:               st.Next,
		Status:             st.Status,
		Winner:             st.Winner,
		Moves:              st.Moves,
		LastMove:           st.LastMove,
		Message:            models.StatusMessage(s.printer, st),
		CurrentPlayerLabel: i18n.PlayerLabel(s.printer, st.Next),
	})
}

func (s *Session) sendError(ctx context.Context, err error) {
	reason := ReasonFor(err)
	if reason == ReasonInternal {
		slog.ErrorContext(ctx, "Session request failed", "session.id", s.ID, "game.id", s.GameID, "error", err)
	}
	s.sendReason(ctx, reason)
}

func (s *Session) sendReason(ctx context.Context, reason string) {
	s.send(ctx, &proto.ServerToClientMessage{Type: proto.TypeError, GameID: s.GameID, Reason: reason})
}

func (s *Session) send(ctx context.Context, msg *proto.ServerToClientMessage) {
	_, span := tracer.Start(ctx, "session.send", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("message.type", msg.Type),
	))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	if err := s.write(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing message to client", "session.id", s.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error writing message to client")
	}
}

// write serialises writes; the ping loop and the read loop both write.
func (s *Session) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

// Close closes the underlying connection, which ends ReadPump.
func (s *Session) Close() error {
	return s.conn.Close()
}
