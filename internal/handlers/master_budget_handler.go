package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// MasterBudgetHandler handles budget template requests.
type MasterBudgetHandler struct {
	masterBudgetService services.MasterBudgetServicer
}

// NewMasterBudgetHandler creates a new MasterBudgetHandler.
func NewMasterBudgetHandler(masterBudgetService services.MasterBudgetServicer) *MasterBudgetHandler {
	return &MasterBudgetHandler{masterBudgetService: masterBudgetService}
}

// CreateMasterBudgetRequest is the payload for creating a template.
type CreateMasterBudgetRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Amount      float64 `json:"amount" binding:"omitempty,gte=0"`
	Description string  `json:"description" binding:"omitempty,max=500"`
}

// UpdateMasterBudgetRequest is the payload for updating a template.
type UpdateMasterBudgetRequest struct {
	Name        string   `json:"name" binding:"omitempty,min=1,max=100"`
	Amount      *float64 `json:"amount" binding:"omitempty,gte=0"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
}

// PropagateRequest selects the templates to copy into a month.
type PropagateRequest struct {
	MasterBudgetIDs []uint `json:"master_budget_ids" binding:"required,min=1"`
}

// CreateMasterBudget creates a budget template.
func (h *MasterBudgetHandler) CreateMasterBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMasterBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	mb, err := h.masterBudgetService.CreateMasterBudget(userID, req.Name, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"master_budget": mb})
}

// GetMasterBudgets lists the user's templates.
func (h *MasterBudgetHandler) GetMasterBudgets(c *gin.Context) {
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

	result, err := h.masterBudgetService.GetUserMasterBudgets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMasterBudget returns a single template.
func (h *MasterBudgetHandler) GetMasterBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	mbID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	mb, err := h.masterBudgetService.GetMasterBudgetByID(userID, mbID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"master_budget": mb})
}

// UpdateMasterBudget updates a template.
func (h *MasterBudgetHandler) UpdateMasterBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	mbID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMasterBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	mb, err := h.masterBudgetService.UpdateMasterBudget(userID, mbID, req.Name, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"master_budget": mb})
}

// DeleteMasterBudget removes a template without touching instantiated
// budgets.
func (h *MasterBudgetHandler) DeleteMasterBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	mbID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.masterBudgetService.DeleteMasterBudget(userID, mbID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Master budget deleted"})
}

// AddToMonth copies the selected templates into a month and reports created
// and skipped counts.
func (h *MasterBudgetHandler) AddToMonth(c *gin.Context) {
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

	var req PropagateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.masterBudgetService.AddMasterBudgetsToMonth(userID, monthID, req.MasterBudgetIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ApplyDefaults seeds the stock onboarding categories for the user.
func (h *MasterBudgetHandler) ApplyDefaults(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.masterBudgetService.ApplyDefaultMasterBudgets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// GetHistory returns the template's audit trail.
func (h *MasterBudgetHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	mbID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.masterBudgetService.GetMasterBudgetHistory(userID, mbID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
