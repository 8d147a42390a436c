package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/internal/handler"
	"smart-tutor-go/internal/language"
	"smart-tutor-go/internal/memory"
	"smart-tutor-go/internal/middleware"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/pipeline"
	"smart-tutor-go/internal/repository"
	"smart-tutor-go/internal/retriever"
	"smart-tutor-go/internal/service"
	"smart-tutor-go/internal/topic"
	"smart-tutor-go/internal/validator"
	"smart-tutor-go/pkg/database"
	"smart-tutor-go/pkg/embedding"
	"smart-tutor-go/pkg/es"
	"smart-tutor-go/pkg/kafka"
	"smart-tutor-go/pkg/llm"
	"smart-tutor-go/pkg/log"
	"smart-tutor-go/pkg/rerank"
	"smart-tutor-go/pkg/storage"
	"smart-tutor-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	log.Info("smart-tutor server starting...")

	if cfg.Database.MySQL.Enabled {
		database.InitMySQL(cfg.Database.MySQL.DSN)
	}
	if cfg.Database.Redis.Enabled {
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	}
	if cfg.Kafka.Enabled {
		if !cfg.Database.Redis.Enabled {
			log.Fatalf("kafka ingestion requires redis for consumer retry bookkeeping; enable database.redis")
		}
		storage.InitMinIO(cfg.MinIO)
		kafka.InitProducer(cfg.Kafka)
	}

	// Retrieval backend: in-process by default, elasticsearch at scale.
	var index retriever.Index
	switch cfg.Retriever.Backend {
	case "elastic":
		if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
			log.Fatalf("failed to init elasticsearch: %v", err)
		}
		index = retriever.NewElasticIndex(es.ESClient, cfg.Elasticsearch.IndexName, cfg.Embedding.Model)
	default:
		index = retriever.NewMemoryIndex()
	}
	log.Infof("retrieval backend: %s", index.Name())

	embedder := embedding.NewClient(cfg.Embedding)
	reranker := rerank.NewClient(cfg.Rerank)
	llmClient := llm.NewClient(cfg.LLM)

	ret := retriever.New(index, embedder, reranker,
		cfg.Retriever.SemanticWeight, cfg.Retriever.ChunkSize, cfg.Retriever.ChunkOverlap)

	router := language.NewRouter(cfg.Language.Default, cfg.Language.MinLength)
	val := validator.New(llmClient)

	memories := memory.NewManager(memory.Config{
		SessionWindow:   cfg.Memory.SessionWindow,
		LongTermWindow:  cfg.Memory.LongTermWindow,
		WeakThreshold:   cfg.Memory.WeakThreshold,
		StrongThreshold: cfg.Memory.StrongThreshold,
	}, topic.NewKeywordExtractor(nil))
	personalizer := memory.NewPersonalizer(llmClient)

	var interactionRepo repository.InteractionRepository
	if cfg.Database.MySQL.Enabled {
		interactionRepo = repository.NewInteractionRepository(database.DB)
	}
	var memoryRepo repository.MemoryRepository
	if cfg.Database.Redis.Enabled {
		memoryRepo = repository.NewMemoryRepository(database.RDB)
		// persisted memory survives restarts: first access pulls the snapshot
		memories.SetSnapshotLoader(func(userID string) *model.MemorySnapshot {
			snap, err := memoryRepo.Load(context.Background(), userID)
			if err != nil {
				log.Errorf("failed to load persisted memory for user %s: %v", userID, err)
				return nil
			}
			return snap
		})
	}

	gen := generationParams(cfg.LLM.Generation)

	answerService := service.NewAnswerService(ret, router, llmClient, val, memories, personalizer,
		interactionRepo, cfg.Retriever.ContextBudget, cfg.Retriever.TopK, gen)
	chatService := service.NewChatService(ret, router, llmClient, memories,
		cfg.Retriever.ContextBudget, cfg.Retriever.TopK, gen)
	documentService := service.NewDocumentService(ret, cfg.Kafka, cfg.MinIO)
	memoryService := service.NewMemoryService(memories, memoryRepo)
	analyticsService := service.NewAnalyticsService(memories, interactionRepo)

	if cfg.Kafka.Enabled {
		processor := pipeline.NewProcessor(ret, cfg.MinIO)
		go kafka.StartConsumer(cfg.Kafka, processor)
	}

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)

	answerHandler := handler.NewAnswerHandler(answerService)
	chatHandler := handler.NewChatHandler(chatService, jwtManager)
	searchHandler := handler.NewSearchHandler(documentService)
	documentHandler := handler.NewDocumentHandler(documentService)
	memoryHandler := handler.NewMemoryHandler(memoryService)
	insightsHandler := handler.NewInsightsHandler(analyticsService)
	authHandler := handler.NewAuthHandler(jwtManager)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/chat/:token", chatHandler.Handle)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/token", authHandler.Token)

		authed := apiV1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			authed.POST("/ask", answerHandler.Ask)
			authed.GET("/search", searchHandler.Search)

			authed.POST("/documents/text", documentHandler.IngestText)
			authed.POST("/documents", documentHandler.Upload)
			authed.GET("/documents/stats", documentHandler.Stats)
			authed.DELETE("/documents", documentHandler.Reset)

			authed.GET("/memory", memoryHandler.Export)
			authed.PUT("/memory", memoryHandler.Import)
			authed.DELETE("/memory", memoryHandler.Clear)
			authed.POST("/memory/feedback", memoryHandler.TopicFeedback)

			authed.GET("/insights", insightsHandler.Insights)
			authed.GET("/history", insightsHandler.History)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Infof("server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}

func generationParams(cfg config.LLMGenerationConfig) *llm.GenerationParams {
	if cfg.Temperature == 0 && cfg.TopP == 0 && cfg.MaxTokens == 0 {
		return nil
	}
	gen := &llm.GenerationParams{}
	if cfg.Temperature != 0 {
		gen.Temperature = &cfg.Temperature
	}
	if cfg.TopP != 0 {
		gen.TopP = &cfg.TopP
	}
	if cfg.MaxTokens != 0 {
		gen.MaxTokens = &cfg.MaxTokens
	}
	return gen
}
