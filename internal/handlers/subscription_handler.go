package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// SubscriptionHandler handles subscription requests.
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServicer
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService services.SubscriptionServicer) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// CreateSubscriptionRequest is the payload for creating a subscription.
type CreateSubscriptionRequest struct {
	Name            string                    `json:"name" binding:"required,min=1,max=100"`
	Amount          float64                   `json:"amount" binding:"required,gt=0"`
	Frequency       models.Frequency          `json:"frequency" binding:"required,frequency"`
	Status          models.SubscriptionStatus `json:"status" binding:"omitempty,subscription_status"`
	NextBillingDate *time.Time                `json:"next_billing_date"`
	Description     string                    `json:"description" binding:"omitempty,max=500"`
}

// UpdateSubscriptionRequest is the payload for updating a subscription.
type UpdateSubscriptionRequest struct {
	Name            string                     `json:"name" binding:"omitempty,min=1,max=100"`
	Amount          *float64                   `json:"amount" binding:"omitempty,gt=0"`
	Frequency       *models.Frequency          `json:"frequency" binding:"omitempty,frequency"`
	Status          *models.SubscriptionStatus `json:"status" binding:"omitempty,subscription_status"`
	NextBillingDate *time.Time                 `json:"next_billing_date"`
	Description     *string                    `json:"description" binding:"omitempty,max=500"`
}

// ConvertSubscriptionsRequest is the payload for projecting subscriptions
// into a month's budgets.
type ConvertSubscriptionsRequest struct {
	MonthlyOverviewID uint      `json:"monthly_overview_id" binding:"required"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	EndDate           time.Time `json:"end_date" binding:"required"`
	SubscriptionIDs   []uint    `json:"subscription_ids" binding:"required,min=1"`
}

// CreateSubscription creates a new subscription.
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subscription, err := h.subscriptionService.CreateSubscription(
		userID, req.Name, req.Amount, req.Frequency, req.Status, req.NextBillingDate, req.Description,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscription": subscription})
}

// GetSubscriptions lists the user's subscriptions, optionally by status.
func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.SubscriptionStatus
	if raw := c.Query("status"); raw != "" {
		s := models.SubscriptionStatus(raw)
		status = &s
	}

	result, err := h.subscriptionService.GetUserSubscriptions(userID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSubscription returns a single subscription.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	subscriptionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// UpdateSubscription updates a subscription.
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	subscriptionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subscription, err := h.subscriptionService.UpdateSubscription(
		userID, subscriptionID, req.Name, req.Amount, req.Frequency, req.Status, req.NextBillingDate, req.Description,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// DeleteSubscription removes a subscription.
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	subscriptionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subscriptionService.DeleteSubscription(userID, subscriptionID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted"})
}

// ConvertToBudgets projects the selected subscriptions into one budget each
// inside the target month. Failures are reported per item, not for the batch.
func (h *SubscriptionHandler) ConvertToBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ConvertSubscriptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.subscriptionService.CreateBudgetsFromSubscriptions(
		userID, req.MonthlyOverviewID, req.StartDate, req.EndDate, req.SubscriptionIDs,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
