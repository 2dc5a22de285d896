package notification

import (
	"encoding/json"
	"time"

	"ampquote/pkg/taskname"

	"github.com/hibiken/asynq"
)

// LicenseLinkPayload carries everything the worker needs to mail a
// purchaser their unlock link.
type LicenseLinkPayload struct {
	DeliveryID string `json:"delivery_id"`
	To         string `json:"to"`
	License    string `json:"license"`
	Token      string `json:"token"`
	UnlockURL  string `json:"unlock_url"`
}

func NewLicenseLinkTask(p LicenseLinkPayload) *asynq.Task {
	payload, _ := json.Marshal(p)
	return asynq.NewTask(taskname.NotificationLicenseLink, payload,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Queue("critical"))
}
