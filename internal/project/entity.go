// AngelaMos | 2026
// entity.go

package project

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/carterperez-dev/projectboard/internal/core"
)

type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	default:
		return false
	}
}

// DateLayout is the calendar-date wire format for start and end dates.
const DateLayout = time.DateOnly

var ErrInvalidDateRange = fmt.Errorf("start date must be before end date: %w", core.ErrInvalidInput)

// ParseDateRange parses two YYYY-MM-DD dates and requires start < end.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %q: %w", start, core.ErrInvalidInput)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %q: %w", end, core.ErrInvalidInput)
	}
	if err := CheckDateRange(s, e); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

func CheckDateRange(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidDateRange
	}
	return nil
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

type Project struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	StartDate     time.Time `db:"start_date"`
	EndDate       time.Time `db:"end_date"`
	ManagerID     string    `db:"manager_id"`
	ManagerName   string    `db:"manager_name"`
	Status        Status    `db:"status"`
	HoursConsumed int       `db:"hours_consumed"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	// AssigneeIDs holds the distinct task assignees of the project.
	AssigneeIDs []string `db:"-"`
}

func (p Project) ManagedBy() string {
	return p.ManagerID
}

func (p Project) HasAssignee(userID string) bool {
	for _, id := range p.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Stats struct {
	TotalTasks      int `db:"total_tasks"`
	CompletedTasks  int `db:"completed_tasks"`
	ProgressPercent int `db:"-"`
	TotalHours      int `db:"-"`
}

// Finish fills the derived fields from the counts and the project's
// consumed hours.
func (s Stats) Finish(hoursConsumed int) Stats {
	s.TotalHours = hoursConsumed
	s.ProgressPercent = 0
	if s.TotalTasks > 0 {
		s.ProgressPercent = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
	}
	return s
}
