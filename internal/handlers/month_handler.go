package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// MonthHandler handles monthly overview and income source requests.
type MonthHandler struct {
	monthService services.MonthServicer
}

// NewMonthHandler creates a new MonthHandler.
func NewMonthHandler(monthService services.MonthServicer) *MonthHandler {
	return &MonthHandler{monthService: monthService}
}

// CreateMonthRequest is the payload for creating a monthly overview.
type CreateMonthRequest struct {
	Name      string    `json:"name" binding:"required,min=1,max=100"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// UpdateMonthRequest is the payload for updating a monthly overview.
type UpdateMonthRequest struct {
	Name      string     `json:"name" binding:"omitempty,min=1,max=100"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// CreateIncomeSourceRequest is the payload for adding an income line.
type CreateIncomeSourceRequest struct {
	Name       string     `json:"name" binding:"required,min=1,max=100"`
	Amount     float64    `json:"amount" binding:"required,gt=0"`
	ReceivedOn *time.Time `json:"received_on"`
}

// UpdateIncomeSourceRequest is the payload for updating an income line.
type UpdateIncomeSourceRequest struct {
	Name       string     `json:"name" binding:"omitempty,min=1,max=100"`
	Amount     *float64   `json:"amount" binding:"omitempty,gt=0"`
	ReceivedOn *time.Time `json:"received_on"`
}

// CreateMonth creates a new monthly overview.
func (h *MonthHandler) CreateMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	month, err := h.monthService.CreateMonth(userID, req.Name, req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"month": month})
}

// GetMonths lists the user's monthly overviews.
func (h *MonthHandler) GetMonths(c *gin.Context) {
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

	result, err := h.monthService.GetUserMonths(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMonth returns a single monthly overview.
func (h *MonthHandler) GetMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.monthService.GetMonthByID(userID, monthID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month})
}

// GetMonthSummary returns the month's income/allocation totals.
func (h *MonthHandler) GetMonthSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.monthService.GetMonthSummary(userID, monthID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// UpdateMonth updates a monthly overview.
func (h *MonthHandler) UpdateMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	month, err := h.monthService.UpdateMonth(userID, monthID, req.Name, req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month})
}

// DeleteMonth removes a monthly overview and everything it owns.
func (h *MonthHandler) DeleteMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.monthService.DeleteMonth(userID, monthID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Monthly overview deleted"})
}

// CreateIncomeSource adds an income line to a month.
func (h *MonthHandler) CreateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	income, err := h.monthService.CreateIncomeSource(userID, monthID, req.Name, req.Amount, req.ReceivedOn)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"income_source": income})
}

// UpdateIncomeSource updates an income line.
func (h *MonthHandler) UpdateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	income, err := h.monthService.UpdateIncomeSource(userID, incomeID, req.Name, req.Amount, req.ReceivedOn)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"income_source": income})
}

// DeleteIncomeSource removes an income line.
func (h *MonthHandler) DeleteIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.monthService.DeleteIncomeSource(userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Income source deleted"})
}
