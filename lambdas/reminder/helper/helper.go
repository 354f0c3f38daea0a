package helper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"crmdesk.com/crmdesk/core/models"
	"crmdesk.com/crmdesk/utils"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"gorm.io/gorm"
)

// DuePlan is one pending next-step plan joined with its customer and owning
// user.
type DuePlan struct {
	PlanID       uint
	DueDate      time.Time
	Notes        *string
	CustomerName string
	UserName     string
	UserEmail    string
}

type Stats struct {
	Scanned  int `json:"scanned"`
	Notified int `json:"notified"`
}

func FindDuePlans(db *gorm.DB, until time.Time) ([]DuePlan, error) {
	var plans []DuePlan
	err := db.Model(&models.NextStepPlan{}).
		Joins("JOIN customers ON customers.id = next_step_plans.customer_id").
		Joins("JOIN users ON users.id = next_step_plans.user_id").
		Where("next_step_plans.status = ? AND next_step_plans.due_date <= ?", models.PlanPending, until).
		Select(`next_step_plans.id AS plan_id,
                next_step_plans.due_date,
                next_step_plans.notes,
                customers.name AS customer_name,
                users.name AS user_name,
                users.email AS user_email`).
		Order("next_step_plans.due_date ASC").
		Scan(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due plans: %w", err)
	}
	return plans, nil
}

// SendDueReminders mails each user one digest of their plans due before
// until. Dry-run counts without sending.
func SendDueReminders(ctx context.Context, db *gorm.DB, from string, until time.Time, dryRun bool) (Stats, error) {
	plans, err := FindDuePlans(db, until)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Scanned: len(plans)}
	groups := utils.GroupBy(plans, func(p DuePlan) string { return p.UserEmail })

	for email, group := range groups {
		emailRaw := BuildReminderEmail(from, email, group)
		if !dryRun {
			if err := sendRawEmail(ctx, emailRaw); err != nil {
				return stats, fmt.Errorf("failed to send reminder to %s: %w", email, err)
			}
		}
		stats.Notified++
	}
	return stats, nil
}

func BuildReminderEmail(from string, to string, plans []DuePlan) *bytes.Buffer {
	var emailRaw bytes.Buffer

	emailRaw.WriteString(fmt.Sprintf("From: %s\r\n", from))
	emailRaw.WriteString(fmt.Sprintf("To: %s\r\n", to))
	emailRaw.WriteString(fmt.Sprintf("Subject: %d follow-up reminder(s) due\r\n", len(plans)))
	emailRaw.WriteString("MIME-Version: 1.0\r\n")
	emailRaw.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	emailRaw.WriteString("\r\n")

	for _, p := range plans {
		line := fmt.Sprintf("- %s: due %s", p.CustomerName, p.DueDate.Format("2006-01-02 15:04"))
		if p.Notes != nil && *p.Notes != "" {
			line += " (" + *p.Notes + ")"
		}
		emailRaw.WriteString(line + "\r\n")
	}

	return &emailRaw
}

func sendRawEmail(ctx context.Context, emailRaw *bytes.Buffer) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	client := ses.NewFromConfig(cfg)

	_, err = client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{
			Data: emailRaw.Bytes(),
		},
	})
	return err
}
