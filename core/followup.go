package core

import (
	"errors"
	"time"

	"crmdesk.com/crmdesk/core/models"
	"crmdesk.com/crmdesk/utils"
	"gorm.io/gorm"
)

type AttachmentInput struct {
	FileName string
	FileURL  string
	FileType string
	FileSize *int64
}

type NextStepInput struct {
	DueDate time.Time
	Notes   *string
}

type FollowUpInput struct {
	Content      string
	FollowUpType models.FollowUpType
	Attachments  []AttachmentInput
	NextStep     *NextStepInput
}

// CreateFollowUp runs the whole workflow in one transaction: verify the
// customer, resolve the acting user, insert the record, bulk-insert
// attachments, insert the PENDING next-step plan, then re-read the composed
// result. Any failure rolls everything back; a partial follow-up is never
// observably persisted.
func CreateFollowUp(db *gorm.DB, resolver ActorResolver, customerID uint, in FollowUpInput) (*models.FollowUpRecord, error) {
	var composed models.FollowUpRecord
	err := db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "customer"}
			}
			return err
		}

		actorID, err := resolver.Resolve(tx)
		if err != nil {
			return err
		}

		record := models.FollowUpRecord{
			Content:      in.Content,
			FollowUpType: in.FollowUpType,
			CustomerID:   customerID,
			UserID:       actorID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if len(in.Attachments) > 0 {
			attachments := utils.Map(in.Attachments, func(a AttachmentInput) models.Attachment {
				return models.Attachment{
					FileName:         a.FileName,
					FileURL:          a.FileURL,
					FileType:         a.FileType,
					FileSize:         a.FileSize,
					FollowUpRecordID: record.ID,
				}
			})
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}

		if in.NextStep != nil {
			plan := models.NextStepPlan{
				DueDate:          in.NextStep.DueDate,
				Notes:            in.NextStep.Notes,
				Status:           models.PlanPending,
				FollowUpRecordID: record.ID,
				CustomerID:       customerID,
				UserID:           actorID,
			}
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
		}

		return preloadFollowUp(tx).First(&composed, record.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &composed, nil
}

// ListFollowUps returns all records for a customer newest-first, each with
// owner, attachments oldest-first and next-step plans soonest-due-first.
func ListFollowUps(db *gorm.DB, customerID uint) ([]models.FollowUpRecord, error) {
	var n int64
	if err := db.Model(&models.Customer{}).Where("id = ?", customerID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, &NotFoundError{Entity: "customer"}
	}

	var records []models.FollowUpRecord
	if err := preloadFollowUp(db).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func preloadFollowUp(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("NextStepPlans", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC, id ASC")
		})
}
