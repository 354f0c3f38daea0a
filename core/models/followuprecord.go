package models

import "time"

type FollowUpType string

const (
	FollowUpPhoneCall      FollowUpType = "PHONE_CALL"
	FollowUpMeeting        FollowUpType = "MEETING"
	FollowUpVisit          FollowUpType = "VISIT"
	FollowUpBusinessDinner FollowUpType = "BUSINESS_DINNER"
)

func (t FollowUpType) Valid() bool {
	switch t {
	case FollowUpPhoneCall, FollowUpMeeting, FollowUpVisit, FollowUpBusinessDinner:
		return true
	}
	return false
}

// FollowUpRecord is append-only: there is no update path for logged
// interactions.
type FollowUpRecord struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Content      string       `gorm:"size:2000;not null" json:"content"`
	FollowUpType FollowUpType `gorm:"size:30;not null" json:"followUpType"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	CustomerID uint `gorm:"index;not null" json:"customerId"`
	UserID     uint `gorm:"index;not null" json:"userId"`

	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`

	Attachments   []Attachment   `gorm:"foreignKey:FollowUpRecordID;constraint:OnDelete:CASCADE" json:"-"`
	NextStepPlans []NextStepPlan `gorm:"foreignKey:FollowUpRecordID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FollowUpRecord) TableName() string {
	return "follow_up_records"
}
