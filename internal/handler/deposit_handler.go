package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/internal/service"
)

// DepositHandler drives the deposit/activation flow over HTTP
type DepositHandler struct {
	deposits           service.DepositService
	walletAddress      string
	exchangePartnerURL string
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(deposits service.DepositService, walletAddress, exchangePartnerURL string) *DepositHandler {
	return &DepositHandler{
		deposits:           deposits,
		walletAddress:      walletAddress,
		exchangePartnerURL: exchangePartnerURL,
	}
}

// GetFlow returns the current deposit flow for the profile
// @Summary Get deposit flow
// @Description Get the profile's deposit flow state, preset tiers and payment details
// @Tags deposit
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DepositFlowResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /deposit [get]
func (h *DepositHandler) GetFlow(c *gin.Context) {
	flow, err := h.deposits.Flow(c.Request.Context(), profileID(c))
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.flowResponse(flow))
}

// SelectAmount sets the deposit amount
// @Summary Select deposit amount
// @Description Choose the deposit tier; amounts below the floor are clamped up
// @Tags deposit
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SelectAmountRequest true "Amount selection"
// @Success 200 {object} dto.DepositFlowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /deposit/amount [post]
func (h *DepositHandler) SelectAmount(c *gin.Context) {
	var req dto.SelectAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	flow, err := h.deposits.SelectAmount(c.Request.Context(), profileID(c), req.AmountUsd)
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.flowResponse(flow))
}

// ConfirmSent handles sent-confirmation and opens the license gate
// @Summary Confirm payment sent
// @Description Confirm the payment was sent; this opens the license gate
// @Tags deposit
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DepositFlowResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /deposit/sent [post]
func (h *DepositHandler) ConfirmSent(c *gin.Context) {
	flow, err := h.deposits.ConfirmSent(c.Request.Context(), profileID(c))
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.flowResponse(flow))
}

// VerifyLicense checks the submitted mining license
// @Summary Submit mining license
// @Description Verify the mining license and start the on-chain confirmation
// @Tags deposit
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.VerifyLicenseRequest true "License submission"
// @Success 200 {object} dto.DepositFlowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.DepositFlowResponse
// @Router /deposit/license [post]
func (h *DepositHandler) VerifyLicense(c *gin.Context) {
	var req dto.VerifyLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	flow, err := h.deposits.VerifyLicense(c.Request.Context(), profileID(c), req.LicenseKey)
	if errors.Is(err, domain.ErrInvalidLicense) {
		// A rejected key keeps the gate open with the error flag set;
		// there is no lockout and the caller may retry immediately
		c.JSON(http.StatusUnprocessableEntity, h.flowResponse(flow))
		return
	}
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.flowResponse(flow))
}

// Status returns the deposit flow for polling during confirmation
// @Summary Poll deposit status
// @Description Poll the flow state while the on-chain confirmation runs
// @Tags deposit
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DepositFlowResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /deposit/status [get]
func (h *DepositHandler) Status(c *gin.Context) {
	flow, err := h.deposits.Flow(c.Request.Context(), profileID(c))
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.flowResponse(flow))
}

// Reset erases the deposit record and restarts the flow
// @Summary Reset deposit record
// @Description Erase the deposit record and return the flow to amount selection
// @Tags deposit
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /deposit/reset [post]
func (h *DepositHandler) Reset(c *gin.Context) {
	if err := h.deposits.Reset(c.Request.Context(), profileID(c)); err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Deposit record reset",
	})
}

func (h *DepositHandler) flowResponse(flow *service.DepositFlow) dto.DepositFlowResponse {
	daily, monthly := domain.ReturnRates(flow.SelectedAmountUsd)

	response := dto.DepositFlowResponse{
		State:              flow.State,
		SelectedAmountUsd:  flow.SelectedAmountUsd,
		Confirmed:          flow.Record.Confirmed,
		Options:            domain.DepositOptions(),
		WalletAddress:      h.walletAddress,
		ExchangePartnerURL: h.exchangePartnerURL,
		DailyReturn:        daily,
		MonthlyReturn:      monthly,
		LicenseError:       flow.LicenseError,
	}

	if flow.Record.FirstActivatedAt != nil {
		v := flow.Record.FirstActivatedAt.Format(time.RFC3339)
		response.FirstActivatedAt = &v
	}
	if flow.Record.LastUpdatedAt != nil {
		v := flow.Record.LastUpdatedAt.Format(time.RFC3339)
		response.LastUpdatedAt = &v
	}

	return response
}

func (h *DepositHandler) flowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotInState):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "Service unavailable",
			Message: "Profile store is unavailable, please try again",
		})
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
	}
}

// profileID reads the authenticated profile set by AuthMiddleware
func profileID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}
