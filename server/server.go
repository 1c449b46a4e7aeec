// Package server is the HTTP boundary: request parsing, status codes, and
// JSON shapes. All concierge behavior lives behind the turn handler.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
	"github.com/tanpawarit/omotenashi-concierge/agent/orchestrator"
	sessionx "github.com/tanpawarit/omotenashi-concierge/agent/session"
)

// TurnHandler runs one guest turn.
type TurnHandler interface {
	HandleMessage(ctx context.Context, phoneNumber, text, systemPrompt string) (orchestrator.Result, error)
}

// GuestLister backs the admin guest listing endpoint.
type GuestLister interface {
	Guests(ctx context.Context) ([]contractx.Guest, error)
}

type MessageRequest struct {
	Message      string `json:"message"`
	PhoneNumber  string `json:"phone_number"`
	SystemPrompt string `json:"system_prompt"`
}

type MessageResponse struct {
	Response  string   `json:"response"`
	SessionID string   `json:"session_id"`
	ToolsUsed []string `json:"tools_used"`
}

type SessionResponse struct {
	SessionID string              `json:"session_id"`
	Messages  []contractx.Message `json:"messages"`
}

type Server struct {
	engine   *gin.Engine
	turns    TurnHandler
	sessions *sessionx.Store
	guests   GuestLister
}

func New(turns TurnHandler, sessions *sessionx.Store, guests GuestLister) *Server {
	s := &Server{
		turns:    turns,
		sessions: sessions,
		guests:   guests,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.POST("/message", s.handleMessage)
	engine.GET("/session/:phone", s.handleGetSession)
	engine.DELETE("/session/:phone", s.handleDeleteSession)
	engine.GET("/guest_profile/all", s.handleListGuests)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/debug/status", s.handleDebugStatus)

	s.engine = engine
	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Phone number is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Message cannot be empty"})
		return
	}

	result, err := s.turns.HandleMessage(c.Request.Context(), req.PhoneNumber, req.Message, req.SystemPrompt)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Phone number is required"})
		case errors.Is(err, contractx.ErrInvalidMessage):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Message cannot be empty"})
		default:
			log.Error().Err(err).Msg("message handling failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}
		return
	}

	toolsUsed := result.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	c.JSON(http.StatusOK, MessageResponse{
		Response:  result.Reply,
		SessionID: result.SessionID,
		ToolsUsed: toolsUsed,
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	phone := c.Param("phone")
	messages := s.sessions.History(phone)
	if len(messages) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: phone,
		Messages:  messages,
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.sessions.Delete(c.Param("phone"))
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleListGuests(c *gin.Context) {
	guests, err := s.guests.Guests(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("guest listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve guest profiles"})
		return
	}
	if guests == nil {
		guests = []contractx.Guest{}
	}
	c.JSON(http.StatusOK, guests)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDebugStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"active_sessions": s.sessions.Len(),
	})
}
