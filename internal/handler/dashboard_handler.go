package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/internal/service"
)

// withdrawThresholdMessage is shown for every withdraw attempt on an active
// deposit; profits never reach the threshold
const withdrawThresholdMessage = "Your profits must reach a minimum of $400 before you can make a withdrawal. Continue mining to increase your earnings."

// DashboardHandler serves the mining dashboard
type DashboardHandler struct {
	sessions  service.SessionService
	deposits  service.DepositService
	simulator *service.Simulator
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(sessions service.SessionService, deposits service.DepositService, simulator *service.Simulator) *DashboardHandler {
	return &DashboardHandler{
		sessions:  sessions,
		deposits:  deposits,
		simulator: simulator,
	}
}

// Stats returns the simulator snapshot for the profile's dashboard
// @Summary Get dashboard stats
// @Description Get the current mining stats; reading them keeps the progression ticking
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.MiningStats
// @Failure 403 {object} domain.Decision
// @Failure 503 {object} dto.ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	id := profileID(c)

	record, err := h.deposits.Record(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Service unavailable",
			Message: "Profile store is unavailable, please try again",
		})
		return
	}

	stats, err := h.simulator.Snapshot(id, record)
	if errors.Is(err, domain.ErrNotActivated) {
		c.JSON(http.StatusForbidden, domain.Decision{
			Permit:     false,
			RedirectTo: domain.RouteDeposit,
			Reason:     "mining account not activated",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Withdraw evaluates a withdraw attempt. The action is never executed: the
// gate routes callers without a deposit to the deposit page, and active
// miners get the profit-threshold explanation.
// @Summary Request a withdrawal
// @Description Evaluate a withdraw attempt against the access gate
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.WithdrawResponse
// @Failure 403 {object} domain.Decision
// @Failure 503 {object} dto.ErrorResponse
// @Router /dashboard/withdraw [post]
func (h *DashboardHandler) Withdraw(c *gin.Context) {
	id := profileID(c)

	session := h.sessions.Hydrate(c.Request.Context(), id)

	record, err := h.deposits.Record(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Service unavailable",
			Message: "Profile store is unavailable, please try again",
		})
		return
	}

	decision := service.DecideWithdraw(session, record)
	if !decision.Permit {
		c.JSON(http.StatusForbidden, decision)
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawResponse{
		Accepted: false,
		Message:  withdrawThresholdMessage,
	})
}

// DemoStats returns the static sample dashboard shown without auth
// @Summary Get demo stats
// @Description Get the unscaled sample mining stats for the demo dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} domain.MiningStats
// @Router /demo/stats [get]
func (h *DashboardHandler) DemoStats(c *gin.Context) {
	c.JSON(http.StatusOK, domain.DemoStats())
}
