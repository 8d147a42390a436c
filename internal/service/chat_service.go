package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"smart-tutor-go/internal/language"
	"smart-tutor-go/internal/level"
	"smart-tutor-go/internal/memory"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/retriever"
	"smart-tutor-go/pkg/llm"

	"github.com/gorilla/websocket"
)

// ChatService streams tutoring answers over a websocket. The stream carries
// the raw generation; the reflective validation pipeline runs on the
// non-streaming Ask path.
type ChatService interface {
	StreamResponse(ctx context.Context, userID, queryText string, ws *websocket.Conn, shouldStop func() bool) error
}

type chatService struct {
	ret           *retriever.Retriever
	router        *language.Router
	llmClient     llm.Client
	memories      *memory.Manager
	contextBudget int
	topK          int
	gen           *llm.GenerationParams
}

func NewChatService(
	ret *retriever.Retriever,
	router *language.Router,
	llmClient llm.Client,
	memories *memory.Manager,
	contextBudget, topK int,
	gen *llm.GenerationParams,
) ChatService {
	if contextBudget <= 0 {
		contextBudget = 4000
	}
	if topK <= 0 {
		topK = 5
	}
	return &chatService{
		ret:           ret,
		router:        router,
		llmClient:     llmClient,
		memories:      memories,
		contextBudget: contextBudget,
		topK:          topK,
		gen:           gen,
	}
}

// StreamResponse retrieves context, routes the language, and streams the
// generated answer chunk by chunk.
func (s *chatService) StreamResponse(ctx context.Context, userID, queryText string, ws *websocket.Conn, shouldStop func() bool) error {
	queryText = strings.TrimSpace(queryText)
	session := s.memories.Session(userID)
	analysis := session.Analyze()
	profile := level.GetProfile(analysis.PreferredLevel)

	if !hasSubstance(queryText) {
		clarify := language.ClarifyingQuestion(s.router.DefaultCode())
		payload, _ := json.Marshal(map[string]string{"chunk": clarify})
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			return err
		}
		sendCompletion(ws)
		return nil
	}

	var (
		wg           sync.WaitGroup
		detectedCode string
		results      []model.SearchResult
		retrieveErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detectedCode = s.router.Detect(queryText)
	}()
	go func() {
		defer wg.Done()
		results, retrieveErr = s.ret.Search(ctx, queryText, s.topK, retriever.ModeHybrid)
	}()
	wg.Wait()

	if retrieveErr != nil {
		return fmt.Errorf("failed to retrieve context: %w", retrieveErr)
	}

	loc := s.router.Route(detectedCode)
	contextText := buildContextText(results, s.contextBudget)
	params := level.AdaptInstructions(profile.Name)
	system := language.RenderTemplate(loc, queryText, contextText) + "\n\n" + params.Guidelines

	// intercept the websocket writer to capture the full answer while
	// wrapping each chunk as JSON
	answerBuilder := &strings.Builder{}
	interceptor := &wsWriterInterceptor{conn: ws, writer: answerBuilder, shouldStop: shouldStop}

	err := s.llmClient.StreamChatMessages(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: queryText},
	}, s.gen, interceptor)
	if err != nil {
		return err
	}

	sendCompletion(ws)
	if fullAnswer := answerBuilder.String(); fullAnswer != "" {
		session.Record("user", queryText, detectedCode, profile.Name)
		session.Record("assistant", fullAnswer, detectedCode, profile.Name)
	}
	return nil
}

// wsWriterInterceptor wraps a websocket.Conn to capture written messages.
type wsWriterInterceptor struct {
	conn       *websocket.Conn
	writer     *strings.Builder
	shouldStop func() bool
}

// WriteMessage satisfies the llm.MessageWriter interface.
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		return nil
	}
	w.writer.Write(data)
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}

func sendCompletion(ws *websocket.Conn) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"timestamp": time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
