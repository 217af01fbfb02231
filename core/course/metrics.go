package course

import (
	"math"

	"github.com/trezcool/mbatrack/core"
)

type Severity string

const (
	SeverityNotApplicable Severity = "not-applicable"
	SeverityCritical      Severity = "critical"
	SeverityWarning       Severity = "warning"
	SeverityHealthy       Severity = "healthy"
)

// BunkBudget is the allowed-absence budget of a Course.
type BunkBudget struct {
	Applicable  bool     `json:"applicable"`
	MinRequired int      `json:"min_required"`
	Allowed     int      `json:"allowed"`
	Left        int      `json:"left"`
	Severity    Severity `json:"severity"`
}

type AttendanceStats struct {
	Present    int `json:"present"`
	Proxy      int `json:"proxy"`
	Absent     int `json:"absent"`
	NotTaken   int `json:"not_taken"`
	Conducted  int `json:"conducted"`
	Attended   int `json:"attended"`
	Percentage int `json:"percentage"`

	// ProjectedPercentage is the share of scheduled sessions not lost to absences.
	ProjectedPercentage int        `json:"projected_percentage"`
	Bunks               BunkBudget `json:"bunks"`
}

// Tally counts sessions per status.
func Tally(sessions []Session) AttendanceStats {
	var stats AttendanceStats
	for _, s := range sessions {
		switch s.Status {
		case StatusPresent:
			stats.Present++
		case StatusProxy:
			stats.Proxy++
		case StatusAbsent:
			stats.Absent++
		case StatusNotTaken:
			stats.NotTaken++
		}
	}
	stats.Conducted = stats.Present + stats.Proxy + stats.Absent
	stats.Attended = stats.Present + stats.Proxy
	stats.Percentage = core.Percentage(stats.Attended, stats.Conducted)
	return stats
}

// AttendancePercentage is round(attended/conducted*100); 100 when nothing was conducted.
func AttendancePercentage(sessions []Session) int {
	return Tally(sessions).Percentage
}

// ComputeBunkBudget derives the absence budget from the scheduled sessions (n),
// the mandatory attendance percentage (m) and the absences so far.
func ComputeBunkBudget(n, m, absent int) BunkBudget {
	if !(n > 0 && m >= 0 && m <= 100) {
		return BunkBudget{Severity: SeverityNotApplicable}
	}
	minRequired := int(math.Ceil(float64(m) / 100 * float64(n)))
	allowed := n - minRequired
	left := allowed - absent

	budget := BunkBudget{
		Applicable:  true,
		MinRequired: minRequired,
		Allowed:     allowed,
		Left:        left,
	}
	switch {
	case left <= 0:
		budget.Severity = SeverityCritical
	case left == 1:
		budget.Severity = SeverityWarning
	default:
		budget.Severity = SeverityHealthy
	}
	return budget
}

// Stats computes the attendance stats of the course from its sessions.
// A course without scheduled sessions reports 100%.
func (c Course) Stats(sessions []Session) AttendanceStats {
	stats := Tally(sessions)
	if c.TotalScheduledSessions <= 0 {
		stats.Percentage = 100
		stats.ProjectedPercentage = 100
	} else {
		stats.ProjectedPercentage = core.Percentage(c.TotalScheduledSessions-stats.Absent, c.TotalScheduledSessions)
	}
	stats.Bunks = ComputeBunkBudget(c.TotalScheduledSessions, c.MandatoryAttendancePercentage, stats.Absent)
	return stats
}
