package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/haigui-org/haigui-backend/internal/handlers"
  "github.com/haigui-org/haigui-backend/internal/middleware"
)

type RouterConfig struct {
  AuthMiddleware *middleware.AuthMiddleware
  UserHandler    *handlers.UserHandler
  BotHandler     *handlers.BotHandler
  ChatHandler    *handlers.ChatHandler
  PuzzleHandler  *handlers.PuzzleHandler
  PromptHandler  *handlers.PromptHandler
  HealthHandler  *handlers.HealthHandler
  WsHandler      gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", cfg.HealthHandler.Check)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    api.POST("/users", cfg.UserHandler.Create)
    api.GET("/users/:id", cfg.UserHandler.Get)
    api.POST("/users/login", cfg.UserHandler.Login)
    api.POST("/users/login_or_register", cfg.UserHandler.LoginOrRegister)

    api.POST("/prompt/validate", cfg.PromptHandler.Validate)
  }

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  protected.GET("/ws", cfg.WsHandler)

  //Bots
  protected.POST("/bots", cfg.BotHandler.Create)
  protected.GET("/bots/:id", cfg.BotHandler.Get)
  protected.PUT("/bots/:id", cfg.BotHandler.Update)
  protected.DELETE("/bots/:id", cfg.BotHandler.Delete)

  //Chats
  protected.POST("/chats", cfg.ChatHandler.Create)
  protected.GET("/chats/all", cfg.ChatHandler.GetAll)
  protected.GET("/chats/:chat_id", cfg.ChatHandler.Get)
  protected.GET("/chats/users/:user_id", cfg.ChatHandler.GetByUser)
  protected.POST("/chats/:chat_id/messages", cfg.ChatHandler.AddMessage)
  protected.GET("/chats/:chat_id/messages/history", cfg.ChatHandler.GetMessages)
  protected.POST("/chats/join/:chat_id/user/:user_id", cfg.ChatHandler.AddUser)
  protected.DELETE("/chats/:chat_id/user/:user_id", cfg.ChatHandler.RemoveUser)

  //Puzzles
  protected.POST("/puzzles", cfg.PuzzleHandler.Create)
  protected.GET("/puzzles/:id", cfg.PuzzleHandler.Get)
  protected.PUT("/puzzles/:id", cfg.PuzzleHandler.Update)
  protected.POST("/chats/:chat_id/puzzle/:puzzle_id", cfg.PuzzleHandler.AssignToChat)
  protected.GET("/chats/:chat_id/puzzle/history", cfg.PuzzleHandler.GetChatHistory)

  return router
}
