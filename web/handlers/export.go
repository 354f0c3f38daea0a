package handlers

import (
	"fmt"
	"net/http"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/web/common"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportCustomers streams the aggregated customer list as an xlsx download.
func (ep *Endpoint) ExportCustomers(c *gin.Context) {
	var aggregates []core.CustomerAggregate
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		var err error
		aggregates, err = core.ListCustomerAggregates(db)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Name", "Company", "Email", "Phone", "Address", "Owner", "Follow-ups", "Plans", "Last follow-up"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		respondError(c, err)
		return
	}

	for i, agg := range aggregates {
		lastFollowUp := ""
		if agg.LatestFollowUp != nil {
			lastFollowUp = agg.LatestFollowUp.CreatedAt.Format(time.RFC3339)
		}
		owner := ""
		if agg.Customer.User != nil {
			owner = agg.Customer.User.Name
		}
		row := []interface{}{
			agg.Customer.Name,
			deref(agg.Customer.CompanyInfo),
			deref(agg.Customer.Email),
			deref(agg.Customer.Phone),
			deref(agg.Customer.Address),
			owner,
			agg.Counts.FollowUpRecords,
			agg.Counts.NextStepPlans,
			lastFollowUp,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			respondError(c, err)
			return
		}
	}

	filename := fmt.Sprintf("customers-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(core.GenericFailureMessage))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
