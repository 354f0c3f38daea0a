package core

import (
	"errors"
	"time"

	"crmdesk.com/crmdesk/core/models"
	"crmdesk.com/crmdesk/utils"
	"gorm.io/gorm"
)

type SeedResult struct {
	AlreadySeeded bool `json:"alreadySeeded"`
	Users         int  `json:"users"`
	Customers     int  `json:"customers"`
	FollowUps     int  `json:"followUps"`
}

// Seed is the canonical one-shot bootstrap. The presence of the sentinel
// user is the seed marker: when it already exists the call no-ops, so the
// endpoint can be hit twice without duplicating sample data.
func Seed(db *gorm.DB) (*SeedResult, error) {
	var existing models.User
	err := db.Where("email = ?", SentinelEmail).Take(&existing).Error
	if err == nil {
		return &SeedResult{AlreadySeeded: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := &SeedResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		user := models.User{Name: SentinelName, Email: SentinelEmail, Role: models.RoleSales}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		result.Users = 1

		customers := []models.Customer{
			{
				Name:        "张总",
				CompanyInfo: utils.Ptr("华东贸易有限公司"),
				Phone:       utils.Ptr("13800138000"),
				UserID:      &user.ID,
			},
			{
				Name:        "李经理",
				Email:       utils.Ptr("li@example.com"),
				CompanyInfo: utils.Ptr("南方制造集团"),
				UserID:      &user.ID,
			},
		}
		if err := tx.Create(&customers).Error; err != nil {
			return err
		}
		result.Customers = len(customers)

		record := models.FollowUpRecord{
			Content:      "首次电话沟通，对方案有初步兴趣。",
			FollowUpType: models.FollowUpPhoneCall,
			CustomerID:   customers[0].ID,
			UserID:       user.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		plan := models.NextStepPlan{
			DueDate:          time.Now().Add(72 * time.Hour),
			Notes:            utils.Ptr("准备报价并回访"),
			Status:           models.PlanPending,
			FollowUpRecordID: record.ID,
			CustomerID:       customers[0].ID,
			UserID:           user.ID,
		}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		result.FollowUps = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
