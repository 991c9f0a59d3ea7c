package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
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

type answerPayload struct {
	Option *int `json:"option"`
}

type hapticPayload struct {
	Pattern domain.HapticPattern `json:"pattern"`
}

type completedPayload struct {
	Result domain.QuizResult `json:"result"`
	Sync   syncPayload       `json:"sync"`
}

type syncPayload struct {
	Status  domain.SyncStatus `json:"status"`
	Warning string            `json:"warning,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	maxMessageBytes = 4096
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10

	// inbound messages per second per connection, with a small burst
	messageRate  = 10
	messageBurst = 20
)

// ServeWS upgrades the request and runs one quiz attempt over the connection.
// Closing the connection releases the attempt.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	lessonID := r.URL.Query().Get("lessonId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	limiter := rate.NewLimiter(rate.Limit(messageRate), messageBurst)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()
		for {
			select {
			case msg, ok := <-send:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					h.logger.Debug("ws write error", zap.Error(err))
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	// push drops messages once the writer is gone so callers never block on a dead socket.
	push := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-writerDone:
		}
	}

	session, err := h.service.Start(r.Context(), app.StartRequest{
		QuizID:   quizID,
		LessonID: lessonID,
		UserID:   userID,
		Feedback: app.FeedbackFunc(func(pattern domain.HapticPattern) {
			push("haptic", hapticPayload{Pattern: pattern})
		}),
	})
	if err != nil {
		push("error", toErrorPayload(err))
		close(send)
		<-writerDone
		return
	}
	attemptID := session.ID()
	log := h.logger.With(zap.String("attempt", attemptID), zap.String("user", userID))
	defer h.service.Close(attemptID)

	updates, cancel := session.Subscribe()
	push("started", <-updates)

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					h.pushCompleted(session, push)
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("ws read error", zap.Error(err))
			}
			break
		}
		if !limiter.Allow() {
			push("error", errorPayload{Code: "rate_limited", Message: "too many messages"})
			continue
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			push("error", errorPayload{Code: "bad_request", Message: "malformed message"})
			continue
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				push("error", errorPayload{Code: "bad_request", Message: "invalid answer payload"})
				continue
			}
			fb, err := h.service.SubmitAnswer(r.Context(), attemptID, *payload.Option)
			if err != nil {
				push("error", toErrorPayload(err))
				continue
			}
			push("answerResult", fb)
		case "advance":
			if _, err := h.service.Advance(r.Context(), attemptID); err != nil {
				push("error", toErrorPayload(err))
			}
		default:
			push("error", errorPayload{Code: "bad_request", Message: "unsupported message type"})
		}
	}

	log.Debug("ws connection closed")
	close(closeSignals)
	cancel()
	<-updatesDone
	close(send)
	<-writerDone
}

// pushCompleted sends the final result once the session has recorded it.
// An abandoned session closes its updates without a result.
func (h *WSHandler) pushCompleted(session *app.Session, push func(string, any)) {
	select {
	case <-session.Done():
	default:
		return
	}
	result, err := session.Result()
	if err != nil {
		return
	}
	report := session.Sync()
	payload := completedPayload{Result: result, Sync: syncPayload{Status: report.Status}}
	if report.Warning != nil {
		payload.Sync.Warning = report.Warning.Error()
	}
	push("completed", payload)
}

func toErrorPayload(err error) errorPayload {
	code := "internal"
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		code = "invalid_transition"
	case errors.Is(err, domain.ErrOptionOutOfRange):
		code = "option_out_of_range"
	case errors.Is(err, domain.ErrConfiguration):
		code = "configuration"
	case errors.Is(err, domain.ErrSessionNotFound):
		code = "session_not_found"
	}
	return errorPayload{Code: code, Message: err.Error()}
}
