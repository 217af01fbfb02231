package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sessionsOf(statuses ...AttendanceStatus) []Session {
	sessions := make([]Session, 0, len(statuses))
	for _, s := range statuses {
		sessions = append(sessions, Session{Status: s})
	}
	return sessions
}

func TestAttendancePercentage(t *testing.T) {
	tests := []struct {
		name     string
		sessions []Session
		want     int
	}{
		{name: "no sessions", want: 100},
		{name: "only not-taken", sessions: sessionsOf(StatusNotTaken, StatusNotTaken), want: 100},
		{name: "all present", sessions: sessionsOf(StatusPresent, StatusPresent), want: 100},
		{name: "proxy counts as attended", sessions: sessionsOf(StatusProxy, StatusAbsent), want: 50},
		{name: "rounded", sessions: sessionsOf(StatusPresent, StatusPresent, StatusAbsent), want: 67},
		{name: "rounded down", sessions: sessionsOf(StatusPresent, StatusAbsent, StatusAbsent), want: 33},
		{name: "all absent", sessions: sessionsOf(StatusAbsent, StatusNotTaken), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendancePercentage(tt.sessions); got != tt.want {
				t.Errorf("AttendancePercentage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeBunkBudget(t *testing.T) {
	tests := []struct {
		name         string
		n, m, absent int
		want         BunkBudget
	}{
		{name: "no scheduled sessions", n: 0, m: 75, want: BunkBudget{Severity: SeverityNotApplicable}},
		{name: "negative scheduled sessions", n: -3, m: 75, want: BunkBudget{Severity: SeverityNotApplicable}},
		{name: "mandatory over 100", n: 10, m: 120, want: BunkBudget{Severity: SeverityNotApplicable}},
		{name: "mandatory under 0", n: 10, m: -1, want: BunkBudget{Severity: SeverityNotApplicable}},
		{
			name: "healthy", n: 20, m: 75, absent: 2,
			want: BunkBudget{Applicable: true, MinRequired: 15, Allowed: 5, Left: 3, Severity: SeverityHealthy},
		},
		{
			name: "ceil of min required", n: 10, m: 75, absent: 1,
			want: BunkBudget{Applicable: true, MinRequired: 8, Allowed: 2, Left: 1, Severity: SeverityWarning},
		},
		{
			name: "none left", n: 10, m: 75, absent: 2,
			want: BunkBudget{Applicable: true, MinRequired: 8, Allowed: 2, Left: 0, Severity: SeverityCritical},
		},
		{
			name: "overdrawn", n: 10, m: 75, absent: 4,
			want: BunkBudget{Applicable: true, MinRequired: 8, Allowed: 2, Left: -2, Severity: SeverityCritical},
		},
		{
			name: "nothing mandatory", n: 4, m: 0,
			want: BunkBudget{Applicable: true, MinRequired: 0, Allowed: 4, Left: 4, Severity: SeverityHealthy},
		},
		{
			name: "everything mandatory", n: 4, m: 100,
			want: BunkBudget{Applicable: true, MinRequired: 4, Allowed: 0, Left: 0, Severity: SeverityCritical},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeBunkBudget(tt.n, tt.m, tt.absent))
		})
	}
}

func TestCourse_Stats(t *testing.T) {
	sessions := sessionsOf(StatusPresent, StatusProxy, StatusAbsent, StatusNotTaken)

	c := Course{TotalScheduledSessions: 10, MandatoryAttendancePercentage: 80}
	stats := c.Stats(sessions)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 1, stats.Proxy)
	assert.Equal(t, 1, stats.Absent)
	assert.Equal(t, 1, stats.NotTaken)
	assert.Equal(t, 3, stats.Conducted)
	assert.Equal(t, 2, stats.Attended)
	assert.Equal(t, 67, stats.Percentage)
	assert.Equal(t, 90, stats.ProjectedPercentage)
	assert.Equal(t, SeverityWarning, stats.Bunks.Severity)

	unscheduled := Course{MandatoryAttendancePercentage: 75}.Stats(sessions)
	assert.Equal(t, 100, unscheduled.Percentage)
	assert.Equal(t, 100, unscheduled.ProjectedPercentage)
	assert.False(t, unscheduled.Bunks.Applicable)
}
