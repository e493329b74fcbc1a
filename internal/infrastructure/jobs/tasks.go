// Package jobs moves low-stock notification delivery onto an asynq queue.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/retailops/backoffice/internal/application/notification"
)

const (
	// QueueDefault is used when no queue is configured
	QueueDefault = "default"
	// TaskLowStock delivers one low-stock alert to the tenant's privileged members
	TaskLowStock = "notification:low_stock"
)

// NewLowStockTask builds the task. The task ID makes a repeated enqueue of the
// same stock change a duplicate instead of a second notification.
func NewLowStockTask(payload notification.LowStockPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("low_stock:%s:%s:%s", payload.TenantID, payload.ItemID, payload.ReferenceID)
	opts = append([]asynq.Option{asynq.TaskID(id)}, opts...)
	return asynq.NewTask(TaskLowStock, data, opts...), nil
}

// ParseLowStockPayload decodes a task payload
func ParseLowStockPayload(task *asynq.Task) (notification.LowStockPayload, error) {
	var payload notification.LowStockPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
