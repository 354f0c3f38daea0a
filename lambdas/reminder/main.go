package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/lambdas/reminder/helper"
	"github.com/aws/aws-lambda-go/lambda"
	"gorm.io/gorm"
)

type ReminderEvent struct {
	Hours  *int `json:"hours"`
	DryRun bool `json:"dryRun"`
}

func HandleRequest(ctx context.Context, event ReminderEvent) (helper.Stats, error) {
	hours := 24
	if event.Hours != nil && *event.Hours > 0 {
		hours = *event.Hours
	}
	until := time.Now().Add(time.Duration(hours) * time.Hour)

	dm, err := core.NewDatabaseManager(os.Getenv("DSN"), 2, core.LogLevelError)
	if err != nil {
		return helper.Stats{}, fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dm.Close()

	var stats helper.Stats
	err = dm.Exec(ctx, func(db *gorm.DB) error {
		var err error
		stats, err = helper.SendDueReminders(ctx, db, os.Getenv("REMINDER_FROM"), until, event.DryRun)
		return err
	})
	if err != nil {
		return stats, err
	}

	fmt.Printf("[INFO] scanned %d due plans, notified %d users\n", stats.Scanned, stats.Notified)
	return stats, nil
}

func main() {
	lambda.Start(HandleRequest)
}
