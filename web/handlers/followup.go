package handlers

import (
	"log"
	"net/http"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/core/models"
	"crmdesk.com/crmdesk/utils"
	"crmdesk.com/crmdesk/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttachmentCreateDTO struct {
	FileName string `json:"fileName" binding:"required,max=255"`
	FileURL  string `json:"fileUrl" binding:"required,url,max=500"`
	FileType string `json:"fileType" binding:"required,max=50"`
	FileSize *int64 `json:"fileSize" binding:"omitempty,min=0"`
}

type NextStepCreateDTO struct {
	DueDate string  `json:"dueDate" binding:"required"`
	Notes   *string `json:"notes" binding:"omitempty,max=500"`
}

type FollowUpCreateDTO struct {
	Content      string                `json:"content" binding:"required,min=1,max=2000"`
	FollowUpType string                `json:"followUpType" binding:"required,oneof=PHONE_CALL MEETING VISIT BUSINESS_DINNER"`
	Attachments  []AttachmentCreateDTO `json:"attachments" binding:"omitempty,dive"`
	NextStep     *NextStepCreateDTO    `json:"nextStep"`
}

type AttachmentDTO struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	FileType  string    `json:"fileType"`
	FileSize  *int64    `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
}

type NextStepPlanDTO struct {
	ID        uint      `json:"id"`
	DueDate   time.Time `json:"dueDate"`
	Notes     *string   `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type FollowUpDTO struct {
	ID            uint              `json:"id"`
	Content       string            `json:"content"`
	FollowUpType  string            `json:"followUpType"`
	CreatedAt     time.Time         `json:"createdAt"`
	User          *UserSummaryDTO   `json:"user"`
	Attachments   []AttachmentDTO   `json:"attachments"`
	NextStepPlans []NextStepPlanDTO `json:"nextStepPlans"`
}

func toFollowUpDTO(rec *models.FollowUpRecord) FollowUpDTO {
	return FollowUpDTO{
		ID:           rec.ID,
		Content:      rec.Content,
		FollowUpType: string(rec.FollowUpType),
		CreatedAt:    rec.CreatedAt,
		User:         toUserSummary(&rec.User),
		Attachments: utils.Map(rec.Attachments, func(a models.Attachment) AttachmentDTO {
			return AttachmentDTO{
				ID:        a.ID,
				FileName:  a.FileName,
				FileURL:   a.FileURL,
				FileType:  a.FileType,
				FileSize:  a.FileSize,
				CreatedAt: a.CreatedAt,
			}
		}),
		NextStepPlans: utils.Map(rec.NextStepPlans, func(p models.NextStepPlan) NextStepPlanDTO {
			return NextStepPlanDTO{
				ID:        p.ID,
				DueDate:   p.DueDate,
				Notes:     p.Notes,
				Status:    string(p.Status),
				CreatedAt: p.CreatedAt,
			}
		}),
	}
}

func (ep *Endpoint) CreateFollowUp(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var dto FollowUpCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	input := core.FollowUpInput{
		Content:      dto.Content,
		FollowUpType: models.FollowUpType(dto.FollowUpType),
		Attachments: utils.Map(dto.Attachments, func(a AttachmentCreateDTO) core.AttachmentInput {
			return core.AttachmentInput{
				FileName: a.FileName,
				FileURL:  a.FileURL,
				FileType: a.FileType,
				FileSize: a.FileSize,
			}
		}),
	}
	if dto.NextStep != nil {
		dueDate, err := utils.ParseISOTime(dto.NextStep.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'nextStep.dueDate' must be an ISO datetime"))
			return
		}
		input.NextStep = &core.NextStepInput{DueDate: *dueDate, Notes: dto.NextStep.Notes}
	}

	var out FollowUpDTO
	var customerName string
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		record, err := core.CreateFollowUp(db, ep.FollowUpActor, id, input)
		if err != nil {
			return err
		}
		var customer models.Customer
		if err := db.Select("name").First(&customer, id).Error; err == nil {
			customerName = customer.Name
		}
		out = toFollowUpDTO(record)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ep.Notifier.FollowUpLogged(customerName, out.FollowUpType, out.Content); err != nil {
		log.Printf("[WARN] slack notification failed: %v", err)
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(out))
}

func (ep *Endpoint) ListFollowUps(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var out []FollowUpDTO
	err := ep.Dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
		records, err := core.ListFollowUps(db, id)
		if err != nil {
			return err
		}
		out = utils.Map(records, func(rec models.FollowUpRecord) FollowUpDTO {
			return toFollowUpDTO(&rec)
		})
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(out))
}
