// Package service contains the application business logic.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"smart-tutor-go/internal/language"
	"smart-tutor-go/internal/level"
	"smart-tutor-go/internal/memory"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/repository"
	"smart-tutor-go/internal/retriever"
	"smart-tutor-go/internal/validator"
	"smart-tutor-go/pkg/llm"
	"smart-tutor-go/pkg/log"
)

// AnswerService runs the full question-answering pipeline.
type AnswerService interface {
	Ask(ctx context.Context, userID string, req AskRequest) (*model.Answer, error)
}

// AskRequest carries one learner question. Language and Level are optional;
// detection and the learner profile fill the gaps.
type AskRequest struct {
	Text     string `json:"question" binding:"required"`
	Language string `json:"language"`
	Level    string `json:"level"`
	Mode     string `json:"mode"`
}

type answerService struct {
	ret             *retriever.Retriever
	router          *language.Router
	llmClient       llm.Client
	val             validator.Validator
	memories        *memory.Manager
	personalizer    *memory.Personalizer
	interactionRepo repository.InteractionRepository // nil when MySQL is disabled
	contextBudget   int
	topK            int
	gen             *llm.GenerationParams
}

func NewAnswerService(
	ret *retriever.Retriever,
	router *language.Router,
	llmClient llm.Client,
	val validator.Validator,
	memories *memory.Manager,
	personalizer *memory.Personalizer,
	interactionRepo repository.InteractionRepository,
	contextBudget, topK int,
	gen *llm.GenerationParams,
) AnswerService {
	if contextBudget <= 0 {
		contextBudget = 4000
	}
	if topK <= 0 {
		topK = 5
	}
	return &answerService{
		ret:             ret,
		router:          router,
		llmClient:       llmClient,
		val:             val,
		memories:        memories,
		personalizer:    personalizer,
		interactionRepo: interactionRepo,
		contextBudget:   contextBudget,
		topK:            topK,
		gen:             gen,
	}
}

// Ask runs the pipeline: language routing and retrieval run concurrently,
// then generation, level shaping, validation, and personalization happen in
// order. The method degrades instead of failing: a malformed question yields
// a clarifying question and a dead generation model yields the locale's
// fallback answer.
func (s *answerService) Ask(ctx context.Context, userID string, req AskRequest) (*model.Answer, error) {
	queryText := strings.TrimSpace(req.Text)
	log.Infof("[AnswerService] question from user %s: '%s'", userID, truncateForLog(queryText, 80))

	session := s.memories.Session(userID)
	analysis := session.Analyze()

	levelName := req.Level
	if levelName == "" {
		levelName = analysis.PreferredLevel
	}
	profile := level.GetProfile(levelName)

	// a question with no letters or digits cannot be routed or retrieved
	if !hasSubstance(queryText) {
		code := req.Language
		if !s.router.Supported(code) {
			code = s.router.DefaultCode()
		}
		log.Warnf("[AnswerService] malformed question from user %s, returning clarifying question", userID)
		return &model.Answer{
			Text:     language.ClarifyingQuestion(code),
			Language: code,
			Level:    profile.Name,
		}, nil
	}

	// step 1: language routing and retrieval are independent, run them in parallel
	log.Info("[AnswerService] step 1: routing language and retrieving context")
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
		results, retrieveErr = s.ret.Search(ctx, queryText, s.topK, searchMode(req.Mode))
	}()
	wg.Wait()

	code := detectedCode
	if s.router.Supported(req.Language) {
		code = req.Language
	}
	loc := s.router.Route(code)

	if retrieveErr != nil {
		log.Errorf("[AnswerService] retrieval failed: %v", retrieveErr)
		results = nil
	}
	contextText := buildContextText(results, s.contextBudget)
	log.Infof("[AnswerService] step 1 done: language=%s, %d context passages", code, len(results))

	// step 2: generation in the target locale, shaped by the level profile
	log.Infof("[AnswerService] step 2: generating draft, level=%s", profile.Name)
	draft, err := s.generate(ctx, loc, profile.Name, queryText, contextText)
	if err != nil {
		log.Errorf("[AnswerService] generation failed, returning fallback answer: %v", err)
		fallback := language.FallbackAnswer(code)
		s.recordInteraction(userID, session, queryText, fallback, code, profile.Name, 0)
		return &model.Answer{
			Text:     fallback,
			Language: code,
			Level:    profile.Name,
			Sources:  results,
		}, nil
	}

	// step 3: deterministic level shaping
	draft = level.PostProcess(draft, profile.Name)

	// step 4: reflective validation with one bounded repair
	log.Info("[AnswerService] step 4: validating answer")
	improved, report := s.val.Validate(ctx, draft, contextText, code, profile.Name)

	// step 5: personalization from memory, never fatal
	log.Info("[AnswerService] step 5: personalizing answer")
	final := s.personalizer.Personalize(ctx, improved, analysis, code, profile.Name)

	s.recordInteraction(userID, session, queryText, final, code, profile.Name, report.OverallScore)

	return &model.Answer{
		Text:     final,
		Language: code,
		Level:    profile.Name,
		Report:   report,
		Sources:  results,
	}, nil
}

func (s *answerService) generate(ctx context.Context, loc language.Locale, levelName, queryText, contextText string) (string, error) {
	params := level.AdaptInstructions(levelName)
	system := language.RenderTemplate(loc, queryText, contextText) + "\n\n" + params.Guidelines

	draft, err := s.llmClient.Complete(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: queryText},
	}, s.gen)
	if err != nil {
		return "", err
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return "", fmt.Errorf("generation returned an empty draft")
	}
	return draft, nil
}

// recordInteraction updates memory and writes the durable interaction row.
// Persistence failures are logged, never surfaced.
func (s *answerService) recordInteraction(userID string, session *memory.Session, question, answer, code, levelName string, score float64) {
	session.Record("user", question, code, levelName)
	session.Record("assistant", answer, code, levelName)
	session.UpdateProfile(session.Analyze())

	if s.interactionRepo == nil {
		return
	}
	err := s.interactionRepo.Create(&model.Interaction{
		UserID:   userID,
		Question: question,
		Answer:   answer,
		Language: code,
		Level:    levelName,
		Score:    score,
	})
	if err != nil {
		log.Errorf("[AnswerService] failed to persist interaction for user %s: %v", userID, err)
	}
}

func searchMode(mode string) retriever.Mode {
	switch mode {
	case "semantic":
		return retriever.ModeSemantic
	case "keyword":
		return retriever.ModeKeyword
	default:
		return retriever.ModeHybrid
	}
}

// buildContextText joins retrieved passages into a numbered context block,
// stopping before the character budget is exceeded.
func buildContextText(results []model.SearchResult, budget int) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	for i, r := range results {
		passage := fmt.Sprintf("[%d] (%s) %s\n", i+1, sourceLabel(r), r.Content)
		if used+len([]rune(passage)) > budget {
			break
		}
		b.WriteString(passage)
		used += len([]rune(passage))
	}
	return b.String()
}

func sourceLabel(r model.SearchResult) string {
	if r.Metadata.SourceName == "" {
		return "unknown"
	}
	return r.Metadata.SourceName
}

// hasSubstance demands at least three letters or digits; anything shorter
// gets a clarifying question instead of a pipeline run.
func hasSubstance(text string) bool {
	count := 0
	for _, c := range text {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			count++
			if count >= 3 {
				return true
			}
		}
	}
	return false
}

func truncateForLog(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
