package services

import (
	"encoding/json"
	"time"

	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/models"

	"gorm.io/gorm"
)

// snapshot serializes a row for a history entry. Marshal failures are logged
// and degrade to an empty object so the audit trail never blocks a mutation
// by itself.
func snapshot(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Get().Errorw("failed to marshal history snapshot", "error", err)
		return "{}"
	}
	return string(data)
}

// recordBudgetHistory appends a BudgetHistoryEntry inside the caller's
// transaction so the entry lands atomically with the mutation it describes.
func recordBudgetHistory(tx *gorm.DB, userID, budgetID uint, action models.HistoryAction, oldRow, newRow any) error {
	entry := &models.BudgetHistoryEntry{
		UserID:    userID,
		BudgetID:  budgetID,
		Action:    action,
		OldData:   snapshot(oldRow),
		NewData:   snapshot(newRow),
		ChangedAt: time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// recordMasterBudgetHistory is the master-budget counterpart of
// recordBudgetHistory.
func recordMasterBudgetHistory(tx *gorm.DB, userID, masterBudgetID uint, action models.HistoryAction, oldRow, newRow any) error {
	entry := &models.MasterBudgetHistoryEntry{
		UserID:         userID,
		MasterBudgetID: masterBudgetID,
		Action:         action,
		OldData:        snapshot(oldRow),
		NewData:        snapshot(newRow),
		ChangedAt:      time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
