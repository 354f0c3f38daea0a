package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/core/models"
	"crmdesk.com/crmdesk/infrastructure/communication"
	"crmdesk.com/crmdesk/infrastructure/devops"
	"crmdesk.com/crmdesk/infrastructure/filesystem"
	"crmdesk.com/crmdesk/web/common"
	"github.com/gin-gonic/gin"
)

// Endpoint carries every dependency the handlers need. Everything is
// injected; there are no package-level singletons.
type Endpoint struct {
	Dm       *core.DatabaseManager
	Storage  filesystem.Storage
	Notifier *communication.Slack
	Cfg      *devops.Config

	// CustomerActor owns new customers (sentinel lookup-or-create);
	// FollowUpActor attributes follow-ups (first user found, kept for
	// compatibility with the original behavior).
	CustomerActor core.ActorResolver
	FollowUpActor core.ActorResolver
}

func Register(api *gin.RouterGroup, ep *Endpoint) {
	api.GET("/customers", ep.ListCustomers)
	api.POST("/customers", ep.CreateCustomer)
	api.GET("/customers/first", ep.FirstCustomer)
	api.GET("/customers/export", ep.ExportCustomers)
	api.GET("/customers/:id", ep.GetCustomer)
	api.PUT("/customers/:id", ep.UpdateCustomer)
	api.DELETE("/customers/:id", ep.DeleteCustomer)
	api.GET("/customers/:id/followups", ep.ListFollowUps)
	api.POST("/customers/:id/followups", ep.CreateFollowUp)
	api.POST("/upload", ep.Upload)
}

func RegisterAdmin(admin *gin.RouterGroup, ep *Endpoint) {
	admin.POST("/seed", ep.Seed)
}

// respondError maps the core error taxonomy to HTTP statuses. Database
// errors are never passed through verbatim: unknowns are logged with detail
// and reported with a generic message only.
func respondError(c *gin.Context, err error) {
	switch {
	case core.IsNotFound(err):
		c.JSON(http.StatusNotFound, common.NewErrorResponse(err.Error()))
	case core.IsConflict(err):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
	case core.IsUnavailable(err) || errors.Is(err, filesystem.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("service dependency unavailable"))
	case errors.Is(err, core.ErrNoUserAvailable):
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(core.GenericFailureMessage))
	}
}

type UserSummaryDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserSummary(u *models.User) *UserSummaryDTO {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

type CustomerDTO struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	CompanyInfo *string         `json:"companyInfo"`
	Email       *string         `json:"email"`
	Phone       *string         `json:"phone"`
	Address     *string         `json:"address"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	User        *UserSummaryDTO `json:"user"`
}

func toCustomerDTO(c *models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:          c.ID,
		Name:        c.Name,
		CompanyInfo: c.CompanyInfo,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		User:        toUserSummary(c.User),
	}
}
