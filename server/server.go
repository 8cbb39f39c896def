// Package server exposes the assistant over a WebSocket. Each connection is
// one session with its own document set and history.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xhad/docqa/pkg/assistant"
)

const (
	TypeUpload   = "upload"
	TypeRemove   = "remove"
	TypeQuestion = "question"
	TypeHistory  = "history"
	TypeClear    = "clear"

	TypeStatus   = "status"
	TypeResponse = "response"
	TypeError    = "error"
)

// DefaultHistoryLimit bounds a history reply when the client sends no limit.
const DefaultHistoryLimit = 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the frame exchanged in both directions. Uploads carry the file
// name in Name and the base64 PDF bytes in Content.
type Message struct {
	Type    string      `json:"type"`
	Name    string      `json:"name,omitempty"`
	Content string      `json:"content"`
	Limit   int         `json:"limit,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Config struct {
	// MaxMessageBytes limits one incoming frame. Zero means 32 MiB.
	MaxMessageBytes int64
	Logger          *zap.Logger
}

type WSServer struct {
	config    Config
	assistant *assistant.Assistant
	logger    *zap.Logger
}

func NewWSServer(a *assistant.Assistant, config Config) *WSServer {
	if config.MaxMessageBytes == 0 {
		config.MaxMessageBytes = 32 << 20
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &WSServer{
		config:    config,
		assistant: a,
		logger:    config.Logger,
	}
}

// Handler serves /ws and /health.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.config.MaxMessageBytes)

	session := assistant.NewSession()
	logger := s.logger.With(zap.String("session", session.ID))
	logger.Info("session opened", zap.String("remote", r.RemoteAddr))
	s.sendMessage(conn, Message{Type: TypeStatus, Content: "connected", Data: map[string]string{"session_id": session.ID}})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("error reading message", zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("invalid message: %v", err)})
			continue
		}

		// One message at a time per connection; writes never race.
		s.handleMessage(r.Context(), conn, session, msg)
	}
	logger.Info("session closed")
}

func (s *WSServer) handleMessage(ctx context.Context, conn *websocket.Conn, session *assistant.Session, msg Message) {
	switch msg.Type {
	case TypeUpload:
		name := strings.TrimSpace(msg.Name)
		if name == "" {
			s.sendMessage(conn, Message{Type: TypeError, Content: "upload requires a name"})
			return
		}
		data, err := base64.StdEncoding.DecodeString(msg.Content)
		if err != nil {
			s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("failed to decode %s: %v", name, err)})
			return
		}
		session.Documents.Put(name, data)
		s.sendMessage(conn, Message{
			Type:    TypeStatus,
			Content: fmt.Sprintf("Loaded %s (%d documents)", name, session.Documents.Len()),
			Data:    session.Documents.Names(),
		})

	case TypeRemove:
		if !session.Documents.Remove(msg.Name) {
			s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("no document named %s", msg.Name)})
			return
		}
		s.sendMessage(conn, Message{Type: TypeStatus, Content: fmt.Sprintf("Removed %s", msg.Name), Data: session.Documents.Names()})

	case TypeQuestion, "":
		question := strings.TrimSpace(msg.Content)
		if question == "" {
			s.sendMessage(conn, Message{Type: TypeError, Content: "question is empty"})
			return
		}
		s.sendMessage(conn, Message{Type: TypeStatus, Content: "Processando documentos..."})

		answer, err := s.assistant.Ask(ctx, session, question)
		if err != nil {
			s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("Error: %v", err)})
			return
		}
		s.sendMessage(conn, Message{Type: TypeResponse, Content: answer.Text, Data: answer.Plan})

	case TypeHistory:
		limit := msg.Limit
		if limit <= 0 {
			limit = DefaultHistoryLimit
		}
		exchanges, err := s.assistant.History(ctx, session, limit)
		if err != nil {
			s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("Error: %v", err)})
			return
		}
		s.sendMessage(conn, Message{Type: TypeHistory, Content: fmt.Sprintf("%d exchanges", len(exchanges)), Data: exchanges})

	case TypeClear:
		if err := s.assistant.ClearHistory(ctx, session); err != nil {
			s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("Error: %v", err)})
			return
		}
		s.sendMessage(conn, Message{Type: TypeStatus, Content: "History cleared"})

	default:
		s.sendMessage(conn, Message{Type: TypeError, Content: fmt.Sprintf("unknown message type: %s", msg.Type)})
	}
}

func (s *WSServer) sendMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("error sending message", zap.String("type", msg.Type), zap.Error(err))
	}
}
