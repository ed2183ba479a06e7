package routes

import (
	"github.com/gin-gonic/gin"
	"voice-interview/internal/api/handlers"
	"voice-interview/internal/api/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	QuestionService      services.QuestionService
	TranscriptionService services.TranscriptionService
	MaxUploadBytes       int64
}

// RegisterRoutes registers the interview API under router (mounted at /api)
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	router.GET("/health", handlers.Health)

	questionHandler := handlers.NewQuestionHandler(container.QuestionService)
	router.GET("/questions", questionHandler.List)

	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService, container.MaxUploadBytes)
	router.POST("/transcribe", transcriptionHandler.Transcribe)
	router.GET("/test-key", transcriptionHandler.TestKey)
}
