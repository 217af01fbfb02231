package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mbatrack/core/deadline"
)

func TestDeadlineNotification(t *testing.T) {
	tests := []struct {
		name string
		d    deadline.Deadline
		want Notification
	}{
		{
			name: "course deadline",
			d:    deadline.Deadline{Title: "Valuation case", Course: &deadline.CourseRef{ID: "c1", Code: "FIN"}},
			want: Notification{Title: "⏰ Deadline Alert: FIN", Body: `"Valuation case" is due in the next 30 minutes! Stay focused.`},
		},
		{
			name: "no course",
			d:    deadline.Deadline{Title: "Club meeting"},
			want: Notification{Title: "⏰ Deadline Alert: Course", Body: `"Club meeting" is due in the next 30 minutes! Stay focused.`},
		},
		{
			name: "course without code",
			d:    deadline.Deadline{Title: "Quiz", Course: &deadline.CourseRef{ID: "c2"}},
			want: Notification{Title: "⏰ Deadline Alert: Course", Body: `"Quiz" is due in the next 30 minutes! Stay focused.`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeadlineNotification(tt.d))
		})
	}
}
