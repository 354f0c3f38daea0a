package core

import (
	"testing"

	"crmdesk.com/crmdesk/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	result, err := Seed(db)
	require.NoError(t, err)
	assert.False(t, result.AlreadySeeded)
	assert.Equal(t, 1, result.Users)
	assert.Equal(t, 2, result.Customers)
	assert.Equal(t, 1, result.FollowUps)

	var customers int64
	db.Model(&models.Customer{}).Count(&customers)
	assert.EqualValues(t, 2, customers)

	again, err := Seed(db)
	require.NoError(t, err)
	assert.True(t, again.AlreadySeeded)

	db.Model(&models.Customer{}).Count(&customers)
	assert.EqualValues(t, 2, customers, "re-seeding must not duplicate sample data")

	var plans int64
	db.Model(&models.NextStepPlan{}).Where("status = ?", models.PlanPending).Count(&plans)
	assert.EqualValues(t, 1, plans)
}
