package core

import (
	"testing"
	"time"

	"crmdesk.com/crmdesk/core/models"
	"crmdesk.com/crmdesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedActor(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	id, err := SentinelResolver{}.Resolve(db)
	require.NoError(t, err)
	return id
}

func TestCreateCustomerThenGetReturnsIdenticalFields(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	created, err := CreateCustomer(db, actorID, CustomerInput{
		Name:        "张总",
		CompanyInfo: utils.Ptr("华东贸易有限公司"),
		Email:       utils.Ptr("zhang@example.com"),
		Phone:       utils.Ptr("13800138000"),
		Address:     utils.Ptr("上海市浦东新区"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.User)
	assert.Equal(t, SentinelEmail, created.User.Email)

	fetched, counts, err := GetCustomer(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, *created.CompanyInfo, *fetched.CompanyInfo)
	assert.Equal(t, *created.Email, *fetched.Email)
	assert.Equal(t, *created.Phone, *fetched.Phone)
	assert.Equal(t, *created.Address, *fetched.Address)
	assert.EqualValues(t, 0, counts.FollowUpRecords)
	assert.EqualValues(t, 0, counts.NextStepPlans)
}

func TestCreateCustomerDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	_, err := CreateCustomer(db, actorID, CustomerInput{Name: "A", Email: utils.Ptr("dup@example.com")})
	require.NoError(t, err)

	_, err = CreateCustomer(db, actorID, CustomerInput{Name: "B", Email: utils.Ptr("dup@example.com")})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "email already in use", err.Error())

	var n int64
	db.Model(&models.Customer{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestCreateCustomerDuplicatePhoneConflicts(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	_, err := CreateCustomer(db, actorID, CustomerInput{Name: "A", Phone: utils.Ptr("13800138000")})
	require.NoError(t, err)

	_, err = CreateCustomer(db, actorID, CustomerInput{Name: "B", Phone: utils.Ptr("13800138000")})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "phone already in use", err.Error())
}

func TestCustomerConflictPropagatesQueryErrors(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	_, err := CreateCustomer(db, actorID, CustomerInput{Name: "A", Email: utils.Ptr("a@example.com")})
	require.NoError(t, err)

	err = customerConflict(db, 0, utils.Ptr("a@example.com"), nil)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "email already in use", err.Error())

	// A failing attribution query surfaces as an error, not as the generic
	// conflict message.
	require.NoError(t, db.Migrator().DropTable(&models.Customer{}))
	err = customerConflict(db, 0, utils.Ptr("a@example.com"), nil)
	require.Error(t, err)
	assert.False(t, IsConflict(err))
}

func TestGetCustomerNotFound(t *testing.T) {
	db := newTestDB(t)

	_, _, err := GetCustomer(db, 999)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "customer does not exist", err.Error())
}

func TestUpdateCustomer(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	customer, err := CreateCustomer(db, actorID, CustomerInput{Name: "Old Name"})
	require.NoError(t, err)

	updated, err := UpdateCustomer(db, customer.ID, CustomerUpdate{
		Name:  utils.Ptr("New Name"),
		Phone: utils.Ptr("13912345678"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "13912345678", *updated.Phone)

	_, err = UpdateCustomer(db, 999, CustomerUpdate{Name: utils.Ptr("X")})
	assert.True(t, IsNotFound(err))
}

func TestUpdateCustomerConflictAgainstOtherCustomer(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	_, err := CreateCustomer(db, actorID, CustomerInput{Name: "A", Phone: utils.Ptr("13800138000")})
	require.NoError(t, err)
	other, err := CreateCustomer(db, actorID, CustomerInput{Name: "B"})
	require.NoError(t, err)

	_, err = UpdateCustomer(db, other.ID, CustomerUpdate{Phone: utils.Ptr("13800138000")})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "phone already in use", err.Error())

	// Keeping your own value is not a conflict.
	updated, err := UpdateCustomer(db, other.ID, CustomerUpdate{Email: utils.Ptr("b@example.com")})
	require.NoError(t, err)
	_, err = UpdateCustomer(db, updated.ID, CustomerUpdate{Email: utils.Ptr("b@example.com")})
	require.NoError(t, err)
}

func TestDeleteCustomerCascades(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	customer, err := CreateCustomer(db, actorID, CustomerInput{Name: "Doomed"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := CreateFollowUp(db, FirstUserResolver{}, customer.ID, FollowUpInput{
			Content:      "visit notes",
			FollowUpType: models.FollowUpVisit,
			Attachments: []AttachmentInput{
				{FileName: "site.png", FileURL: "https://files.test/site.png", FileType: "image"},
			},
			NextStep: &NextStepInput{DueDate: time.Now().Add(24 * time.Hour)},
		})
		require.NoError(t, err)
	}

	require.NoError(t, DeleteCustomer(db, customer.ID))

	var records, attachments, plans int64
	db.Model(&models.FollowUpRecord{}).Count(&records)
	db.Model(&models.Attachment{}).Count(&attachments)
	db.Model(&models.NextStepPlan{}).Count(&plans)
	assert.Zero(t, records)
	assert.Zero(t, attachments)
	assert.Zero(t, plans)

	_, _, err = GetCustomer(db, customer.ID)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(DeleteCustomer(db, customer.ID)))
}

func TestFirstCustomer(t *testing.T) {
	db := newTestDB(t)

	_, err := FirstCustomer(db)
	assert.True(t, IsNotFound(err))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := models.Customer{Name: "Older", CreatedAt: base}
	newer := models.Customer{Name: "Newer", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&older).Error)

	first, err := FirstCustomer(db)
	require.NoError(t, err)
	assert.Equal(t, "Older", first.Name)
}

func TestListCustomerAggregatesTwoTierOrdering(t *testing.T) {
	db := newTestDB(t)
	actorID := seedActor(t, db)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// C has no follow-ups, created earliest; A and B sort by their latest
	// follow-up, not by customer creation time.
	customerA := models.Customer{Name: "A", CreatedAt: base.Add(1 * time.Hour), UserID: &actorID}
	customerB := models.Customer{Name: "B", CreatedAt: base.Add(2 * time.Hour), UserID: &actorID}
	customerC := models.Customer{Name: "C", CreatedAt: base.Add(30 * time.Minute), UserID: &actorID}
	customerD := models.Customer{Name: "D", CreatedAt: base.Add(45 * time.Minute), UserID: &actorID}
	require.NoError(t, db.Create(&customerA).Error)
	require.NoError(t, db.Create(&customerB).Error)
	require.NoError(t, db.Create(&customerC).Error)
	require.NoError(t, db.Create(&customerD).Error)

	followUpA := models.FollowUpRecord{
		Content: "a", FollowUpType: models.FollowUpPhoneCall,
		CustomerID: customerA.ID, UserID: actorID,
		CreatedAt: base.Add(10 * time.Hour),
	}
	followUpB := models.FollowUpRecord{
		Content: "b", FollowUpType: models.FollowUpMeeting,
		CustomerID: customerB.ID, UserID: actorID,
		CreatedAt: base.Add(20 * time.Hour),
	}
	// An older record for B proves only the newest one counts.
	followUpBOld := models.FollowUpRecord{
		Content: "b-old", FollowUpType: models.FollowUpVisit,
		CustomerID: customerB.ID, UserID: actorID,
		CreatedAt: base.Add(5 * time.Hour),
	}
	require.NoError(t, db.Create(&followUpA).Error)
	require.NoError(t, db.Create(&followUpB).Error)
	require.NoError(t, db.Create(&followUpBOld).Error)

	aggregates, err := ListCustomerAggregates(db)
	require.NoError(t, err)
	require.Len(t, aggregates, 4)

	names := utils.Map(aggregates, func(agg CustomerAggregate) string { return agg.Customer.Name })
	// Tier 1 by follow-up recency: B then A. Tier 2 by customer creation
	// desc: D then C.
	assert.Equal(t, []string{"B", "A", "D", "C"}, names)

	assert.EqualValues(t, 2, aggregates[0].Counts.FollowUpRecords)
	require.NotNil(t, aggregates[0].LatestFollowUp)
	assert.Equal(t, "b", aggregates[0].LatestFollowUp.Content)
	assert.Nil(t, aggregates[2].LatestFollowUp)
}
