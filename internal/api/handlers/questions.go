package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"voice-interview/internal/api/dto"
	"voice-interview/internal/api/services"
)

// QuestionHandler serves the interview prompt list
type QuestionHandler struct {
	service services.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(service services.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// List handles GET /api/questions. It always answers 200; resolution
// problems degrade to the built-in prompts.
//
// @Summary List interview prompts
// @Description Prompts come from questions.json, else the prompt audio directory, else the built-in pair
// @Tags questions
// @Produce json
// @Success 200 {object} dto.QuestionsResponse "Ordered prompt list"
// @Router /questions [get]
func (h *QuestionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.QuestionsResponse{Items: h.service.Resolve(c.Request.Context())})
}
