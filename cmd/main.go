package main

import (
  "fmt"
  "os"
  "time"

  "github.com/haigui-org/haigui-backend/internal/db"
  "github.com/haigui-org/haigui-backend/internal/handlers"
  "github.com/haigui-org/haigui-backend/internal/llm"
  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/middleware"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/seed"
  "github.com/haigui-org/haigui-backend/internal/server"
  "github.com/haigui-org/haigui-backend/internal/services"
  "github.com/haigui-org/haigui-backend/internal/socket"
  "github.com/haigui-org/haigui-backend/internal/utils"
)

func main() {
  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  openaiAPIKey := utils.GetEnv("OPENAI_API_KEY", "", log)
  openaiBaseURL := utils.GetEnv("OPENAI_BASE_URL", "", log)
  anthropicAPIKey := utils.GetEnv("ANTHROPIC_API_KEY", "", log)
  anthropicBaseURL := utils.GetEnv("ANTHROPIC_BASE_URL", "", log)
  judgeModelID := utils.GetEnv("JUDGE_MODEL_ID", "gpt-4o", log)
  completionMode := utils.GetEnv("STORY_COMPLETION_MODE", services.CompletionModePrefix, log)
  log.Debug("Environment variables loaded for Main :)",
    "accessTokenTTL", accessTokenTTL,
    "redisAddress", redisAddress,
    "judgeModelID", judgeModelID,
    "completionMode", completionMode,
  )

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("DB init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  userRepo := repos.NewUserRepo(thePG, log)
  botRepo := repos.NewBotRepo(thePG, log)
  chatRepo := repos.NewChatRepo(thePG, log)
  messageRepo := repos.NewMessageRepo(thePG, log)
  puzzleRepo := repos.NewPuzzleRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Seed Setup
  log.Info("Attempting to Seed The Postgres From Main now...")
  if err := seed.SeedAll(thePG, botRepo, puzzleRepo); err != nil {
    log.Warn("Failed to seed data :(", "error", err)
  }
  log.Info("Seeding of Postgres From Main Successful :)")

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now :)")
  wsHub := socket.NewHub(log)
  log.Info("Websocket Hub Set Up From Main Successful :)")

  // Redis PubSub
  log.Info("Setting Up Redis PubSub From Main Now :)")
  redisChanName := "haigui_hub_broadcast"
  redisPubSub, err := socket.NewRedisPubSub(log, redisAddress, redisPassword, redisChanName)
  if err != nil {
    log.Warn("Failed to init redis pubsub", "error", err)
  } else {
    if err := redisPubSub.StartSubscriber(wsHub); err != nil {
      log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
    } else {
      wsHub.SetRedisPubSub(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }

  // LLM Providers Setup
  log.Info("Setting Up LLM Providers from Main now...")
  registry := llm.NewRegistry()
  registry.Register(llm.ProviderOpenAI, llm.NewOpenAIProvider(openaiBaseURL, openaiAPIKey, log))
  registry.Register(llm.ProviderAnthropic, llm.NewAnthropicProvider(anthropicBaseURL, anthropicAPIKey, log))
  log.Info("LLM Providers Set Up From Main Successful :)")

  // Services Setup
  log.Info("Setting up Services from Main now...")
  authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  botService := services.NewBotService(thePG, log, botRepo, registry, judgeModelID)
  completionChecker := services.NewStoryCompletionChecker(log, registry, judgeModelID)
  chatService := services.NewChatService(thePG, log, chatRepo, messageRepo, userRepo, botRepo, botService, completionChecker, wsHub, completionMode)
  puzzleService := services.NewPuzzleService(thePG, log, puzzleRepo, chatRepo)
  promptValidator := services.NewPromptValidatorService(log)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  userHandler := handlers.NewUserHandler(authService)
  botHandler := handlers.NewBotHandler(botService)
  chatHandler := handlers.NewChatHandler(chatService)
  puzzleHandler := handlers.NewPuzzleHandler(puzzleService)
  promptHandler := handlers.NewPromptHandler(promptValidator)
  healthHandler := handlers.NewHealthHandler(thePG)
  wsHandler := handlers.WsHandler(wsHub, log)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    AuthMiddleware: authMiddleware,
    UserHandler:    userHandler,
    BotHandler:     botHandler,
    ChatHandler:    chatHandler,
    PuzzleHandler:  puzzleHandler,
    PromptHandler:  promptHandler,
    HealthHandler:  healthHandler,
    WsHandler:      wsHandler,
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }

  // On Shutdown
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
}
