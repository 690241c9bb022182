// AngelaMos | 2026
// dto.go

package project

import (
	"time"
)

type CreateProjectRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	StartDate   string `json:"start_date"  validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date"    validate:"required,datetime=2006-01-02"`
	ManagerID   string `json:"manager_id"  validate:"required,uuid"`
}

type UpdateProjectRequest struct {
	Name          *string `json:"name,omitempty"           validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description,omitempty"    validate:"omitempty,max=2000"`
	StartDate     *string `json:"start_date,omitempty"     validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date,omitempty"       validate:"omitempty,datetime=2006-01-02"`
	Status        *string `json:"status,omitempty"         validate:"omitempty,oneof=planning in_progress completed on_hold"`
	HoursConsumed *int    `json:"hours_consumed,omitempty" validate:"omitempty,gte=0"`
}

type ProjectResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	ManagerID     string    `json:"manager_id"`
	ManagerName   string    `json:"manager_name,omitempty"`
	Status        Status    `json:"status"`
	HoursConsumed int       `json:"hours_consumed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type StatsResponse struct {
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	ProgressPercent int `json:"progress_percent"`
	TotalHours      int `json:"total_hours"`
}

type ProjectDetailResponse struct {
	ProjectResponse
	Stats StatsResponse `json:"stats"`
}

func ToProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		StartDate:     p.StartDate.Format(DateLayout),
		EndDate:       p.EndDate.Format(DateLayout),
		ManagerID:     p.ManagerID,
		ManagerName:   p.ManagerName,
		Status:        p.Status,
		HoursConsumed: p.HoursConsumed,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToProjectResponseList(projects []Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, ToProjectResponse(&p))
	}
	return responses
}

func ToProjectDetailResponse(p *Project, s Stats) ProjectDetailResponse {
	return ProjectDetailResponse{
		ProjectResponse: ToProjectResponse(p),
		Stats: StatsResponse{
			TotalTasks:      s.TotalTasks,
			CompletedTasks:  s.CompletedTasks,
			ProgressPercent: s.ProgressPercent,
			TotalHours:      s.TotalHours,
		},
	}
}
