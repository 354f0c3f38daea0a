package core

import (
	"errors"
	"fmt"

	"crmdesk.com/crmdesk/core/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// There is no real authentication; a well-known sentinel user stands in for
// the acting sales rep.
const (
	SentinelEmail = "sales@crmdesk.local"
	SentinelName  = "Default Sales"
)

// ActorResolver yields the user id every mutating operation is attributed
// to. A real auth layer replaces these implementations without touching the
// business logic.
type ActorResolver interface {
	Resolve(db *gorm.DB) (uint, error)
}

// SentinelResolver looks up the sentinel user by its fixed email and creates
// it with the SALES role when absent. Note the read path may write.
type SentinelResolver struct{}

func (SentinelResolver) Resolve(db *gorm.DB) (uint, error) {
	var user models.User
	err := db.Where("email = ?", SentinelEmail).Take(&user).Error
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("cannot resolve a valid user: %w", err)
	}

	user = models.User{Name: SentinelName, Email: SentinelEmail, Role: models.RoleSales}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&user).Error; err != nil {
		return 0, fmt.Errorf("cannot resolve a valid user: %w", err)
	}

	// A concurrent create may have won the conflict; fetch whichever row is
	// there now.
	if user.ID == 0 {
		if err := db.Where("email = ?", SentinelEmail).Take(&user).Error; err != nil {
			return 0, fmt.Errorf("cannot resolve a valid user: %w", err)
		}
	}
	return user.ID, nil
}

// ErrNoUserAvailable means the user table is empty, so there is nobody to
// attribute a mutation to.
var ErrNoUserAvailable = errors.New("no user available")

// FirstUserResolver picks the earliest-created user. This preserves the
// source behavior for follow-up creation when no auth exists.
type FirstUserResolver struct{}

func (FirstUserResolver) Resolve(db *gorm.DB) (uint, error) {
	var user models.User
	if err := db.Order("id ASC").Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoUserAvailable
		}
		return 0, err
	}
	return user.ID, nil
}
