package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/internal/service"
)

// NavigationHandler evaluates the access gate for navigation attempts
type NavigationHandler struct {
	sessions service.SessionService
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(sessions service.SessionService) *NavigationHandler {
	return &NavigationHandler{
		sessions: sessions,
	}
}

// Navigate evaluates one navigation attempt
// @Summary Evaluate a navigation attempt
// @Description Ask the access gate whether the caller may open a destination
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body dto.NavigateRequest true "Navigation request"
// @Success 200 {object} domain.Decision
// @Failure 400 {object} dto.ErrorResponse
// @Router /navigate [post]
func (h *NavigationHandler) Navigate(c *gin.Context) {
	var req dto.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	// Anonymous callers get the logged-out session; the gate handles both
	session := domain.LoggedOut()
	if profileID, ok := c.Get("user_id"); ok {
		session = h.sessions.Hydrate(c.Request.Context(), profileID.(string))
	}

	decision := service.Decide(session, domain.Route(req.Destination))

	c.JSON(http.StatusOK, decision)
}
