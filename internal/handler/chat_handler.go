package handler

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"smart-tutor-go/internal/service"
	"smart-tutor-go/pkg/log"
	"smart-tutor-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChatHandler serves the streaming tutoring endpoint over a websocket.
type ChatHandler struct {
	chatService service.ChatService
	jwtManager  *token.JWTManager
}

func NewChatHandler(chatService service.ChatService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{chatService: chatService, jwtManager: jwtManager}
}

type chatInbound struct {
	Type     string `json:"type"` // "question" or "stop"
	Question string `json:"question"`
}

// Handle upgrades GET /chat/:token to a websocket. The client sends
// question frames; the server streams answer chunks back. A "stop" frame
// mutes the stream currently in flight.
func (h *ChatHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("[ChatHandler] websocket upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	log.Infof("[ChatHandler] websocket session started for user %s", claims.UserID)

	// a single reader goroutine owns ReadMessage; stop frames flip the flag
	// even while a stream is being written
	var stopped atomic.Bool
	questions := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(questions)
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				log.Infof("[ChatHandler] websocket closed for user %s: %v", claims.UserID, err)
				return
			}
			var msg chatInbound
			if err := json.Unmarshal(data, &msg); err != nil {
				// treat a bare text frame as the question itself
				msg = chatInbound{Type: "question", Question: string(data)}
			}
			if msg.Type == "stop" {
				stopped.Store(true)
				continue
			}
			select {
			case questions <- msg.Question:
			case <-done:
				// the handler already returned; don't block forever
				return
			}
		}
	}()

	for question := range questions {
		stopped.Store(false)
		err := h.chatService.StreamResponse(
			c.Request.Context(),
			claims.UserID,
			question,
			ws,
			func() bool { return stopped.Load() },
		)
		if err != nil {
			log.Errorf("[ChatHandler] stream failed for user %s: %v", claims.UserID, err)
			payload, _ := json.Marshal(gin.H{"type": "error", "message": "failed to generate a response"})
			if writeErr := ws.WriteMessage(websocket.TextMessage, payload); writeErr != nil {
				return
			}
		}
	}
}
