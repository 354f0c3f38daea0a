package models

import "time"

type Role string

const (
	RoleSales   Role = "SALES"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:20;not null;default:SALES" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Customers       []Customer       `gorm:"foreignKey:UserID" json:"-"`
	FollowUpRecords []FollowUpRecord `gorm:"foreignKey:UserID" json:"-"`
	NextStepPlans   []NextStepPlan   `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
