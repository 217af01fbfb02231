package core

import "context"

// Cached views. Each mutation invalidates every view showing the entity it touched.
const (
	ViewDashboard   = "/"
	ViewCourses     = "/courses"
	ViewCalendar    = "/calendar"
	ViewSkills      = "/skills"
	ViewGoals       = "/goals"
	ViewJournal     = "/journal"
	ViewCaseStudies = "/case-studies"
)

func CourseView(id string) string    { return ViewCourses + "/" + id }
func CaseStudyView(id string) string { return ViewCaseStudies + "/" + id }

// ViewCache stores rendered (JSON) views by key.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Invalidate(ctx context.Context, keys ...string) error
}

// InvalidateViews invalidates keys, logging instead of failing: the write is already committed.
func InvalidateViews(ctx context.Context, cache ViewCache, logger Logger, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, keys...); err != nil {
		logger.Warn("invalidating cached views", err, map[string]interface{}{"views": keys})
	}
}
