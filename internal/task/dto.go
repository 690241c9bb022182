// AngelaMos | 2026
// dto.go

package task

import (
	"time"

	"github.com/carterperez-dev/projectboard/internal/project"
)

type CreateTaskRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	StartDate   string `json:"start_date"  validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date"    validate:"required,datetime=2006-01-02"`
	AssigneeID  string `json:"assignee_id" validate:"required,uuid"`
}

type TaskResponse struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"project_id"`
	Position      int            `json:"position"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	AssigneeID    string         `json:"assignee_id"`
	AssigneeName  string         `json:"assignee_name,omitempty"`
	Status        project.Status `json:"status"`
	HoursConsumed int            `json:"hours_consumed"`
	CreatedAt     time.Time      `json:"created_at"`
}

func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Position:      t.Position,
		Name:          t.Name,
		Description:   t.Description,
		StartDate:     t.StartDate.Format(project.DateLayout),
		EndDate:       t.EndDate.Format(project.DateLayout),
		AssigneeID:    t.AssigneeID,
		AssigneeName:  t.AssigneeName,
		Status:        t.Status,
		HoursConsumed: t.HoursConsumed,
		CreatedAt:     t.CreatedAt,
	}
}

func ToTaskResponseList(tasks []Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, ToTaskResponse(&t))
	}
	return responses
}
