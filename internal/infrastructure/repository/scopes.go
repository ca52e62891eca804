package repository

import (
	"github.com/sangkips/velo-register/internal/domain/enum"
	"gorm.io/gorm"
)

// OperatorScope restricts a journal query to one operator's checkouts.
// Operator ids come from the back office and are always positive, so a zero
// id matches nothing.
func OperatorScope(operatorID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if operatorID <= 0 {
			return db.Where("1 = 0")
		}
		return db.Where("operator_id = ?", operatorID)
	}
}

// PendingDocumentsScope keeps orders that were placed but still lack their
// receipt or invoice
func PendingDocumentsScope(db *gorm.DB) *gorm.DB {
	return db.Where("outcome = ?", enum.OutcomePartialSuccess)
}
