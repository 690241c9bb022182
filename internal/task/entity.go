// AngelaMos | 2026
// entity.go

package task

import (
	"time"

	"github.com/carterperez-dev/projectboard/internal/project"
)

// Task belongs to exactly one project. Position is its 1-based place in
// the project's insertion order.
type Task struct {
	ID            string         `db:"id"`
	ProjectID     string         `db:"project_id"`
	Position      int            `db:"position"`
	Name          string         `db:"name"`
	Description   string         `db:"description"`
	StartDate     time.Time      `db:"start_date"`
	EndDate       time.Time      `db:"end_date"`
	AssigneeID    string         `db:"assignee_id"`
	AssigneeName  string         `db:"assignee_name"`
	CreatedBy     string         `db:"created_by"`
	Status        project.Status `db:"status"`
	HoursConsumed int            `db:"hours_consumed"`
	CreatedAt     time.Time      `db:"created_at"`
}
