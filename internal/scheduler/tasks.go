package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskDailyCallRun is the queued batch run over the configured client sheets.
const TaskDailyCallRun = "calls.daily_run"

type DailyCallRunPayload struct {
	SheetIDs []string `json:"sheetIds"`
}

func NewDailyCallRunTask(payload DailyCallRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyCallRun, data), nil
}

func ParseDailyCallRunPayload(task *asynq.Task) (DailyCallRunPayload, error) {
	var payload DailyCallRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DailyCallRunPayload{}, err
	}
	return payload, nil
}
