package models

import "time"

// Customer email and phone are unique across customers when present.
// MySQL and sqlite both allow multiple NULLs under a unique index, so the
// optional fields stay pointers.
type Customer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	CompanyInfo *string   `gorm:"size:200" json:"companyInfo"`
	Email       *string   `gorm:"size:100;uniqueIndex" json:"email"`
	Phone       *string   `gorm:"size:20;uniqueIndex" json:"phone"`
	Address     *string   `gorm:"size:300" json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	UserID *uint `gorm:"index" json:"userId"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`

	FollowUpRecords []FollowUpRecord `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	NextStepPlans   []NextStepPlan   `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}
