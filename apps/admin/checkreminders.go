package main

import (
	"context"
	"time"
)

// checkReminders runs one dispatch pass over due reminders, the same pass
// the API's background job runs on a ticker.
func (cli *commandLine) checkReminders() error {
	sent, failed, err := cli.remSvc.SendDue(context.Background(), time.Now().UTC())
	if err != nil {
		return err
	}
	logger.Printf("reminders dispatched: %d sent, %d failed\n", sent, failed)
	return nil
}
