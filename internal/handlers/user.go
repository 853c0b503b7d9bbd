package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/haigui-org/haigui-backend/internal/services"
  "github.com/haigui-org/haigui-backend/internal/types"
)

type UserHandler struct {
  authService services.AuthService
}

func NewUserHandler(authService services.AuthService) *UserHandler {
  return &UserHandler{authService: authService}
}

func (uh *UserHandler) Create(c *gin.Context) {
  var req struct {
    Username string `json:"username"`
    Email    string `json:"email,omitempty"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user := types.User{
    Username: req.Username,
    Email:    req.Email,
    Password: req.Password,
  }
  created, err := uh.authService.RegisterUser(c.Request.Context(), &user)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, created)
}

func (uh *UserHandler) Get(c *gin.Context) {
  userID, ok := parseUUIDParam(c, "id")
  if !ok {
    return
  }
  user, err := uh.authService.GetUser(c.Request.Context(), userID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, user)
}

func (uh *UserHandler) Login(c *gin.Context) {
  var req struct {
    Username string `json:"username"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, accessToken, err := uh.authService.Login(c.Request.Context(), req.Username, req.Password)
  if err != nil {
    respondError(c, err)
    return
  }
  expiresIn := int(uh.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{"user": user, "access_token": accessToken, "expires_in": expiresIn})
}

func (uh *UserHandler) LoginOrRegister(c *gin.Context) {
  var req struct {
    Username string `json:"username"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, accessToken, err := uh.authService.LoginOrRegister(c.Request.Context(), req.Username, req.Password)
  if err != nil {
    respondError(c, err)
    return
  }
  expiresIn := int(uh.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{"user": user, "access_token": accessToken, "expires_in": expiresIn})
}
