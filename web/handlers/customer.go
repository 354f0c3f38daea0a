package handlers

import (
	"net/http"
	"strconv"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/utils"
	"crmdesk.com/crmdesk/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CustomerCreateDTO struct {
	Name        string  `json:"name" binding:"required,max=100"`
	CompanyInfo *string `json:"companyInfo" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,email,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,cnmobile"`
	Address     *string `json:"address" binding:"omitempty,max=300"`
}

type CustomerUpdateDTO struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	CompanyInfo *string `json:"companyInfo" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,email,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,cnmobile"`
	Address     *string `json:"address" binding:"omitempty,max=300"`
}

type FollowUpBriefDTO struct {
	ID           uint      `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	Content      string    `json:"content"`
	FollowUpType string    `json:"followUpType"`
}

type CustomerListItemDTO struct {
	CustomerDTO
	Count                core.CustomerCounts `json:"_count"`
	LatestFollowUpRecord *FollowUpBriefDTO   `json:"latestFollowUpRecord"`
}

type CustomerDetailDTO struct {
	CustomerDTO
	Count core.CustomerCounts `json:"_count"`
}

func customerID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid id"))
		return 0, false
	}
	return uint(id), true
}

func (ep *Endpoint) ListCustomers(c *gin.Context) {
	var items []CustomerListItemDTO
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		aggregates, err := core.ListCustomerAggregates(db)
		if err != nil {
			return err
		}
		items = utils.Map(aggregates, func(agg core.CustomerAggregate) CustomerListItemDTO {
			item := CustomerListItemDTO{
				CustomerDTO: toCustomerDTO(&agg.Customer),
				Count:       agg.Counts,
			}
			if agg.LatestFollowUp != nil {
				item.LatestFollowUpRecord = &FollowUpBriefDTO{
					ID:           agg.LatestFollowUp.ID,
					CreatedAt:    agg.LatestFollowUp.CreatedAt,
					Content:      agg.LatestFollowUp.Content,
					FollowUpType: string(agg.LatestFollowUp.FollowUpType),
				}
			}
			return item
		})
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(items))
}

func (ep *Endpoint) CreateCustomer(c *gin.Context) {
	var dto CustomerCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var out CustomerDTO
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		actorID, err := ep.CustomerActor.Resolve(db)
		if err != nil {
			return err
		}
		customer, err := core.CreateCustomer(db, actorID, core.CustomerInput{
			Name:        dto.Name,
			CompanyInfo: dto.CompanyInfo,
			Email:       dto.Email,
			Phone:       dto.Phone,
			Address:     dto.Address,
		})
		if err != nil {
			return err
		}
		out = toCustomerDTO(customer)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(out))
}

func (ep *Endpoint) GetCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var out CustomerDetailDTO
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		customer, counts, err := core.GetCustomer(db, id)
		if err != nil {
			return err
		}
		out = CustomerDetailDTO{CustomerDTO: toCustomerDTO(customer), Count: *counts}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(out))
}

func (ep *Endpoint) UpdateCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var dto CustomerUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	var out CustomerDTO
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		customer, err := core.UpdateCustomer(db, id, core.CustomerUpdate{
			Name:        dto.Name,
			CompanyInfo: dto.CompanyInfo,
			Email:       dto.Email,
			Phone:       dto.Phone,
			Address:     dto.Address,
		})
		if err != nil {
			return err
		}
		out = toCustomerDTO(customer)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(out))
}

func (ep *Endpoint) DeleteCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		return core.DeleteCustomer(db, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": id}))
}

func (ep *Endpoint) FirstCustomer(c *gin.Context) {
	var out gin.H
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		customer, err := core.FirstCustomer(db)
		if err != nil {
			return err
		}
		out = gin.H{"id": customer.ID, "name": customer.Name}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(out))
}
