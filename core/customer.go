package core

import (
	"errors"
	"sort"

	"crmdesk.com/crmdesk/core/models"
	"gorm.io/gorm"
)

type CustomerInput struct {
	Name        string
	CompanyInfo *string
	Email       *string
	Phone       *string
	Address     *string
}

// CustomerUpdate carries only the fields present in the request; nil means
// "leave unchanged".
type CustomerUpdate struct {
	Name        *string
	CompanyInfo *string
	Email       *string
	Phone       *string
	Address     *string
}

type CustomerCounts struct {
	FollowUpRecords int64 `json:"followUpRecords"`
	NextStepPlans   int64 `json:"nextStepPlans"`
}

// CustomerAggregate is one row of the primary list view: the customer, its
// owner, related counts and the single newest follow-up record.
type CustomerAggregate struct {
	Customer       models.Customer
	Counts         CustomerCounts
	LatestFollowUp *models.FollowUpRecord
}

// CreateCustomer persists a customer owned by actorID and returns it with
// the owner preloaded. Uniqueness of email/phone is left to the database;
// the loser of a race gets the same friendly conflict message as a
// sequential duplicate.
func CreateCustomer(db *gorm.DB, actorID uint, in CustomerInput) (*models.Customer, error) {
	customer := models.Customer{
		Name:        in.Name,
		CompanyInfo: in.CompanyInfo,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		UserID:      &actorID,
	}
	if err := db.Create(&customer).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, customerConflict(db, 0, in.Email, in.Phone)
		}
		return nil, err
	}

	if err := db.Preload("User").First(&customer, customer.ID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// customerConflict attributes a duplicate-key failure to the offending
// field so the message names it. Attribution query errors propagate rather
// than masquerading as the generic conflict.
func customerConflict(db *gorm.DB, excludeID uint, email, phone *string) error {
	if err := existingConflict(db, excludeID, email, phone); err != nil {
		return err
	}
	return &ConflictError{Message: "email or phone already in use"}
}

// GetCustomer returns the customer with its owner plus follow-up and plan
// counts. A missing id yields NotFoundError so callers can redirect instead
// of showing a hard error.
func GetCustomer(db *gorm.DB, id uint) (*models.Customer, *CustomerCounts, error) {
	var customer models.Customer
	if err := db.Preload("User").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Entity: "customer"}
		}
		return nil, nil, err
	}

	var counts CustomerCounts
	if err := db.Model(&models.FollowUpRecord{}).
		Where("customer_id = ?", id).
		Count(&counts.FollowUpRecords).Error; err != nil {
		return nil, nil, err
	}
	if err := db.Model(&models.NextStepPlan{}).
		Where("customer_id = ?", id).
		Count(&counts.NextStepPlans).Error; err != nil {
		return nil, nil, err
	}
	return &customer, &counts, nil
}

// ListCustomerAggregates returns every customer (no pagination in the
// primary list view) with owner, counts and newest follow-up, sorted by the
// two-tier recency rule.
func ListCustomerAggregates(db *gorm.DB) ([]CustomerAggregate, error) {
	var customers []models.Customer
	if err := db.Preload("User").Find(&customers).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		CustomerID uint
		N          int64
	}
	var followUpCounts []countRow
	if err := db.Model(&models.FollowUpRecord{}).
		Select("customer_id, COUNT(*) AS n").
		Group("customer_id").
		Scan(&followUpCounts).Error; err != nil {
		return nil, err
	}
	var planCounts []countRow
	if err := db.Model(&models.NextStepPlan{}).
		Select("customer_id, COUNT(*) AS n").
		Group("customer_id").
		Scan(&planCounts).Error; err != nil {
		return nil, err
	}

	var records []models.FollowUpRecord
	if err := db.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	followUpByCustomer := make(map[uint]int64, len(followUpCounts))
	for _, row := range followUpCounts {
		followUpByCustomer[row.CustomerID] = row.N
	}
	planByCustomer := make(map[uint]int64, len(planCounts))
	for _, row := range planCounts {
		planByCustomer[row.CustomerID] = row.N
	}
	latestByCustomer := make(map[uint]models.FollowUpRecord)
	for _, rec := range records {
		if _, seen := latestByCustomer[rec.CustomerID]; !seen {
			latestByCustomer[rec.CustomerID] = rec
		}
	}

	aggregates := make([]CustomerAggregate, 0, len(customers))
	for _, customer := range customers {
		agg := CustomerAggregate{
			Customer: customer,
			Counts: CustomerCounts{
				FollowUpRecords: followUpByCustomer[customer.ID],
				NextStepPlans:   planByCustomer[customer.ID],
			},
		}
		if latest, ok := latestByCustomer[customer.ID]; ok {
			rec := latest
			agg.LatestFollowUp = &rec
		}
		aggregates = append(aggregates, agg)
	}

	sortCustomerAggregates(aggregates)
	return aggregates, nil
}

// sortCustomerAggregates applies the two-tier rule: customers with at least
// one follow-up come first, newest follow-up first; customers without any
// come after, by their own creation time, newest first. The two tiers
// compare different fields, which is why this is not a single ORDER BY.
func sortCustomerAggregates(aggregates []CustomerAggregate) {
	sort.SliceStable(aggregates, func(i, j int) bool {
		a, b := aggregates[i], aggregates[j]
		switch {
		case a.LatestFollowUp != nil && b.LatestFollowUp == nil:
			return true
		case a.LatestFollowUp == nil && b.LatestFollowUp != nil:
			return false
		case a.LatestFollowUp != nil && b.LatestFollowUp != nil:
			return a.LatestFollowUp.CreatedAt.After(b.LatestFollowUp.CreatedAt)
		default:
			return a.Customer.CreatedAt.After(b.Customer.CreatedAt)
		}
	})
}

// UpdateCustomer applies the non-nil fields. The uniqueness pre-check
// attributes a collision to the right field; the database constraint still
// backs it up, and both paths yield the same message.
func UpdateCustomer(db *gorm.DB, id uint, in CustomerUpdate) (*models.Customer, error) {
	var customer models.Customer
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "customer"}
			}
			return err
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.CompanyInfo != nil {
			updates["company_info"] = *in.CompanyInfo
		}
		if in.Email != nil {
			updates["email"] = *in.Email
		}
		if in.Phone != nil {
			updates["phone"] = *in.Phone
		}
		if in.Address != nil {
			updates["address"] = *in.Address
		}
		if len(updates) == 0 {
			return nil
		}

		if in.Email != nil || in.Phone != nil {
			if conflict := existingConflict(tx, id, in.Email, in.Phone); conflict != nil {
				return conflict
			}
		}

		if err := tx.Model(&customer).Updates(updates).Error; err != nil {
			if IsDuplicateKey(err) {
				return customerConflict(tx, id, in.Email, in.Phone)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("User").First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func existingConflict(db *gorm.DB, excludeID uint, email, phone *string) error {
	if email != nil {
		var n int64
		if err := db.Model(&models.Customer{}).
			Where("email = ? AND id <> ?", *email, excludeID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{Message: "email already in use"}
		}
	}
	if phone != nil {
		var n int64
		if err := db.Model(&models.Customer{}).
			Where("phone = ? AND id <> ?", *phone, excludeID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{Message: "phone already in use"}
		}
	}
	return nil
}

// DeleteCustomer removes the customer and everything hanging off it in one
// transaction. The cascade is executed explicitly as well as declared on the
// schema, so the contract holds even where the test database does not
// enforce foreign keys.
func DeleteCustomer(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "customer"}
			}
			return err
		}

		var recordIDs []uint
		if err := tx.Model(&models.FollowUpRecord{}).
			Where("customer_id = ?", id).
			Pluck("id", &recordIDs).Error; err != nil {
			return err
		}

		if len(recordIDs) > 0 {
			if err := tx.Where("follow_up_record_id IN ?", recordIDs).
				Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("customer_id = ?", id).
			Delete(&models.NextStepPlan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).
			Delete(&models.FollowUpRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
}

// FirstCustomer returns the earliest-created customer; the client uses it to
// redirect when a detail page 404s.
func FirstCustomer(db *gorm.DB) (*models.Customer, error) {
	var customer models.Customer
	if err := db.Order("created_at ASC, id ASC").Take(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "customer"}
		}
		return nil, err
	}
	return &customer, nil
}
