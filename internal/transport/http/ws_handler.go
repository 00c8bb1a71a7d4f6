package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizdeck/internal/app"
	"quizdeck/internal/domain"
)

// WSHandler drives one quiz session per websocket connection: the client
// navigates and answers over messages, and finishing submits the score to
// the leaderboard and returns the player's rank.
type WSHandler struct {
	sessions *app.Sessions
	board    *app.Leaderboard
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions *app.Sessions, board *app.Leaderboard) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		board:    board,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type answerPayload struct {
	Value any `json:"value"`
}

// wireQuestion is the client view of a question: the correct answer never
// crosses the wire.
type wireQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Index   int      `json:"index"`
	Total   int      `json:"total"`
}

type scorePayload struct {
	Score     int  `json:"score"`
	Total     int  `json:"total"`
	Completed bool `json:"completed"`
}

type answerAck struct {
	Stored bool `json:"stored"`
	Index  int  `json:"index"`
}

type resultPayload struct {
	Entry domain.LeaderboardEntry `json:"entry"`
	Rank  *domain.UserRank        `json:"rank,omitempty"`
}

// ServeWS upgrades the request and runs the session loop. Query params:
// quizId (required), userId and name (used when the score is submitted).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.sessions.Load(r.Context(), quizID)
	if err != nil && session == nil {
		status := "load failed: " + err.Error()
		if errors.Is(err, domain.ErrQuizNotFound) {
			status = "quiz not found"
		}
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: status}})
		return
	}
	if err != nil {
		// Quiz loaded but its questions did not; tell the client and keep
		// the session usable.
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	h.sendQuestion(conn, session)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			stored := session.Answer(payload.Value)
			_ = conn.WriteJSON(outboundMessage[answerAck]{Type: "answerAck", Payload: answerAck{Stored: stored, Index: session.Cursor()}})
		case "next":
			session.Next()
			h.sendQuestion(conn, session)
		case "previous":
			session.Previous()
			h.sendQuestion(conn, session)
		case "current":
			h.sendQuestion(conn, session)
		case "score":
			h.sendScore(conn, session)
		case "finish":
			h.finish(conn, r, session, userID, displayName)
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) finish(conn *websocket.Conn, r *http.Request, session *app.Session, userID, displayName string) {
	quiz := session.Quiz()
	entry, err := h.board.Submit(r.Context(), domain.ScoreSubmission{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		UserID:         userID,
		DisplayName:    displayName,
		Score:          session.Score(),
		TotalQuestions: session.Total(),
	})
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	rank, err := h.board.UserRank(r.Context(), entry.QuizID, entry.UserID)
	if err != nil {
		log.Printf("rank lookup after submit: %v", err)
	}
	_ = conn.WriteJSON(outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{Entry: entry, Rank: rank}})
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, session *app.Session) {
	question, ok := session.Current()
	if !ok {
		h.sendError(conn, "quiz has no questions")
		return
	}
	_ = conn.WriteJSON(outboundMessage[wireQuestion]{Type: "question", Payload: wireQuestion{
		ID:      question.ID,
		Text:    question.Text,
		Options: question.Options,
		Index:   session.Cursor(),
		Total:   session.Total(),
	}})
}

func (h *WSHandler) sendScore(conn *websocket.Conn, session *app.Session) {
	_ = conn.WriteJSON(outboundMessage[scorePayload]{Type: "score", Payload: scorePayload{
		Score:     session.Score(),
		Total:     session.Total(),
		Completed: session.Completed(),
	}})
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}
