// Package dashboard computes the admin overview.
package dashboard

import (
	"context"
	"time"

	"academy/models"
	"academy/models/course"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Stats struct {
	TotalUsers           int64 `json:"total_users"`
	PublishedCourses     int64 `json:"published_courses"`
	PendingCourses       int64 `json:"pending_courses"`
	TotalEnrollments     int64 `json:"total_enrollments"`
	CompletedEnrollments int64 `json:"completed_enrollments"`
	ActiveSubscribers    int64 `json:"active_subscribers"`
}

type RecentUser struct {
	ID                 uint                      `json:"id"`
	Name               string                    `json:"name"`
	Email              string                    `json:"email"`
	Role               models.Role               `json:"role"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscription_status"`
	CreatedAt          time.Time                 `json:"created_at"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Stats runs the platform counts concurrently
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := s.db.WithContext(ctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&st.TotalUsers, &models.User{}, "is_deleted = ?", false)
	count(&st.PublishedCourses, &course.Course{}, "status = ? AND is_deleted = ?", course.StatusPublished, false)
	count(&st.PendingCourses, &course.Course{}, "status = ? AND is_deleted = ?", course.StatusDraft, false)
	count(&st.TotalEnrollments, &course.Enrollment{}, "")
	count(&st.CompletedEnrollments, &course.Enrollment{}, "completed_at IS NOT NULL")
	count(&st.ActiveSubscribers, &models.User{}, "subscription_status = ? AND is_deleted = ?", models.SubscriptionActive, false)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

// RecentUsers returns the newest sign-ups
func (s *Service) RecentUsers(ctx context.Context, limit int) ([]RecentUser, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var users []RecentUser
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id, name, email, role, subscription_status, created_at").
		Where("is_deleted = ?", false).
		Order("created_at desc, id desc").
		Limit(limit).
		Scan(&users).Error
	return users, err
}
