package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"xdrive-logistics-api-server/internal/service"
)

type BidHandler struct {
	Bids *service.BidService
}

// GetJobBids returns every bid on a job, for the posting company.
func (h *BidHandler) GetJobBids(c *gin.Context) {
	bids, err := h.Bids.ListBids(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bids)
}

type ResolveBidPayload struct {
	BidID  string `json:"bidId" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// ResolveBid accepts or rejects one submitted bid on an open job.
func (h *BidHandler) ResolveBid(c *gin.Context) {
	var payload ResolveBidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.Bids.Resolve(c.Request.Context(), actorFromContext(c), c.Param("id"), payload.BidID, payload.Action)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": message})
}

type SubmitBidPayload struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency"`
	Message   string  `json:"message"`
	DriverID  string  `json:"driverID"`
	VehicleID string  `json:"vehicleID"`
}

// SubmitBid places a carrier's offer on an open marketplace job.
func (h *BidHandler) SubmitBid(c *gin.Context) {
	var payload SubmitBidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currency := payload.Currency
	if currency == "" {
		currency = "USD"
	}

	bid, err := h.Bids.Submit(c.Request.Context(), actorFromContext(c), c.Param("id"), service.SubmitBidInput{
		Amount:    payload.Amount,
		Currency:  currency,
		Message:   payload.Message,
		DriverID:  payload.DriverID,
		VehicleID: payload.VehicleID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// WithdrawBid retracts the caller's own submitted bid.
func (h *BidHandler) WithdrawBid(c *gin.Context) {
	bidID := c.Param("id")
	if err := h.Bids.Withdraw(c.Request.Context(), actorFromContext(c), bidID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Bid " + bidID + " withdrawn"})
}

// GetMyCompanyBids lists the caller company's bids across jobs.
func (h *BidHandler) GetMyCompanyBids(c *gin.Context) {
	bids, err := h.Bids.CompanyBids(c.Request.Context(), actorFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bids)
}
