package models

import "time"

type PlanStatus string

const (
	PlanPending PlanStatus = "PENDING"
	PlanDone    PlanStatus = "DONE"
)

type NextStepPlan struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	DueDate   time.Time  `gorm:"not null;index" json:"dueDate"`
	Notes     *string    `gorm:"size:500" json:"notes"`
	Status    PlanStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	FollowUpRecordID uint `gorm:"index;not null" json:"followUpRecordId"`
	CustomerID       uint `gorm:"index;not null" json:"customerId"`
	UserID           uint `gorm:"index;not null" json:"userId"`

	FollowUpRecord FollowUpRecord `gorm:"foreignKey:FollowUpRecordID" json:"-"`
	Customer       Customer       `gorm:"foreignKey:CustomerID" json:"-"`
	User           User           `gorm:"foreignKey:UserID" json:"-"`
}

func (NextStepPlan) TableName() string {
	return "next_step_plans"
}
