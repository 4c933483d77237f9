package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"propertychat/internal/config"
	"propertychat/internal/conversation"
	"propertychat/internal/events"
	"propertychat/internal/handler"
	"propertychat/internal/parser"
	"propertychat/internal/repository"
	"propertychat/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Property Chat Search")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)
	service.SetDebug(cfg.DebugEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load catalog
	catalog, err := repository.LoadCatalog(ctx, cfg.Catalog.DataDir)
	if err != nil {
		log.Fatalf("Failed to load property catalog: %v", err)
	}
	log.Printf("✅ Loaded %d properties from %s", catalog.Len(), cfg.Catalog.DataDir)
	log.Printf("   - Locations: %s", strings.Join(catalog.Locations(), ", "))

	vocab := parser.DefaultVocabulary()
	if cfg.Catalog.VocabularyFile != "" {
		vocab, err = parser.LoadVocabulary(cfg.Catalog.VocabularyFile)
		if err != nil {
			log.Fatalf("Failed to load location vocabulary: %v", err)
		}
		log.Printf("✅ Location vocabulary loaded from %s", cfg.Catalog.VocabularyFile)
	}
	lexicalParser := parser.New(vocab, cfg.Parser.ThousandsThreshold)
	if missing := catalog.MissingLocations(lexicalParser.Vocabulary().Labels()); len(missing) > 0 {
		log.Printf("⚠️  Vocabulary locations with no listings: %s", strings.Join(missing, ", "))
	}

	// Initialize OpenAI client
	var aiClient service.AIClient
	var delegate service.FilterExtractor
	if cfg.OpenAI.Enabled {
		openaiClient := service.NewOpenAIClient(&cfg.OpenAI)
		aiClient = openaiClient
		delegate = service.NewDelegateExtractor(openaiClient, lexicalParser.Vocabulary(), cfg.Conversation.HistoryTurns)
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
		log.Printf("   - Chat TopP: %.2f", cfg.OpenAI.ChatTopP)
		log.Printf("   - Chat MaxTokens: %d", cfg.OpenAI.ChatMaxTokens)
		log.Printf("   - Chat ExtraBody: %s", cfg.OpenAI.ChatExtraBody)
	} else {
		log.Println("⚠️  OpenAI is disabled - chat will use the lexical parser and template replies")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Conversation state
	var store conversation.Store
	if cfg.Redis.Addr != "" {
		redisStore := conversation.NewRedisStore(conversation.NewRedisClient(&cfg.Redis), cfg.Conversation.TTL)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisStore.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		store = redisStore
		log.Printf("✅ Connected to Redis for conversation state (%s)", cfg.Redis.Addr)
	} else {
		store = conversation.NewMemoryStore(cfg.Conversation.TTL, cfg.Conversation.MaxSessions)
		log.Printf("✅ In-memory conversation state (ttl %s, max %d sessions)", cfg.Conversation.TTL, cfg.Conversation.MaxSessions)
	}

	// Lists and search log
	var listStore repository.ListStore
	var searchLogger service.SearchLogger
	if cfg.HasPostgreSQL() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		listStore, searchLogger = repo, repo
		log.Println("✅ Connected to PostgreSQL database")
	} else {
		listStore = repository.NewMemoryListStore()
		log.Println("⚠️  No database configured - saved and comparison lists are kept in memory")
	}

	var publisher service.SearchPublisher
	if cfg.Events.KafkaBroker != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Events.KafkaBroker, cfg.Events.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Printf("Warning: Failed to close Kafka writer: %v", err)
			}
			if n := kafkaPublisher.Failures(); n > 0 {
				log.Printf("⚠️  %d search event(s) were not delivered to Kafka", n)
			}
		}()
		publisher = kafkaPublisher
		log.Printf("✅ Publishing search events to Kafka topic %s", kafkaPublisher.Topic())
	}

	// Initialize services
	ranker := service.NewRanker(cfg.Ranking.WeightPrice, cfg.Ranking.WeightBedrooms, cfg.Ranking.PreviewCount)
	resolver := service.NewResolver(delegate, service.NewLexicalExtractor(lexicalParser), store)
	chatService := service.NewChatService(
		resolver,
		catalog,
		service.NewRelaxationEngine(nil),
		service.NewComposer(aiClient, ranker),
		searchLogger,
		publisher,
	)
	propertyService := service.NewPropertyService(catalog, lexicalParser)
	listService := service.NewListService(listStore, catalog)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	savedHandler := handler.NewListHandler(listService, repository.ListSaved)
	comparisonHandler := handler.NewListHandler(listService, repository.ListComparison)
	healthHandler := handler.NewHealthHandler(chatService, listService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	corsConfig.ExposeHeaders = []string{handler.SessionHeader}
	router.Use(cors.New(corsConfig))

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/properties", propertyHandler.List)

		// Chat endpoints
		api.POST("/chat", chatHandler.Chat)
		api.POST("/chat/stream", chatHandler.ChatStream)
		api.DELETE("/chat/:sessionId", chatHandler.Reset)

		// Saved properties
		api.GET("/saved", savedHandler.Get)
		api.POST("/saved", savedHandler.Add)
		api.DELETE("/saved/:propertyId", savedHandler.Remove)

		// Comparison list
		api.GET("/comparison", comparisonHandler.Get)
		api.POST("/comparison", comparisonHandler.Add)
		api.DELETE("/comparison/:propertyId", comparisonHandler.Remove)
		api.DELETE("/comparison", comparisonHandler.Clear)
	}

	setupStaticFiles(router, cfg.Server.StaticDir)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Server shutdown: %v", err)
	}
	chatService.Wait()
	log.Println("✅ Server stopped")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
