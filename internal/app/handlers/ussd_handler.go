package handlers

import (
	"context"
	"net/http"

	"payja-lending/internal/service/session"

	"github.com/gin-gonic/gin"
)

// UssdEngine is satisfied by *session.SessionEngine.
type UssdEngine interface {
	HandleRequest(ctx context.Context, req session.Request) (*session.Response, error)
}

type ussdRequest struct {
	SessionID   string `json:"sessionId" binding:"required,max=128"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	UserInput   string `json:"userInput" binding:"max=182"`
}

type UssdHandler struct {
	engine UssdEngine
}

func NewUssdHandler(engine UssdEngine) *UssdHandler {
	return &UssdHandler{engine: engine}
}

// HandleUssd serves one gateway round-trip.
func (h *UssdHandler) HandleUssd(c *gin.Context) {
	var body ussdRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.engine.HandleRequest(c.Request.Context(), session.Request{
		SessionID:   body.SessionID,
		PhoneNumber: body.PhoneNumber,
		UserInput:   body.UserInput,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
