package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/content"
	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

const upcomingExamLimit = 5

type dashboardExamReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Exam, error)
}

type dashboardProfileReader interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
}

type tipsLibrary interface {
	Style(style models.LearningStyle) (content.StyleGuide, bool)
}

// DashboardService assembles the per-student overview.
type DashboardService struct {
	exams    dashboardExamReader
	profiles dashboardProfileReader
	library  tipsLibrary
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs the service. A nil cache disables caching.
func NewDashboardService(exams dashboardExamReader, profiles dashboardProfileReader, library tipsLibrary, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		exams:    exams,
		profiles: profiles,
		library:  library,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func dashboardCacheKey(userID string) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

// Summary returns the overview and whether it came from the cache.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*models.DashboardSummary, bool, error) {
	key := dashboardCacheKey(userID)
	var cached models.DashboardSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	exams, err := s.exams.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}
	summary := SummarizeExams(exams, s.now())

	profile, err := s.profiles.GetByUser(ctx, userID)
	switch {
	case err == nil:
		s.attachTips(summary, profile)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	_ = s.cache.Set(ctx, key, summary, s.ttl)
	return summary, false, nil
}

// InvalidateUser drops the cached overview for userID.
func (s *DashboardService) InvalidateUser(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey(userID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *DashboardService) attachTips(summary *models.DashboardSummary, profile *models.Profile) {
	if profile == nil || profile.LearningStyle == nil || s.library == nil {
		return
	}
	style := models.LearningStyle(*profile.LearningStyle)
	guide, ok := s.library.Style(style)
	if !ok {
		return
	}
	tips := guide.DashboardTips
	summary.LearningStyle = &style
	summary.Tips = &tips
}

// SummarizeExams computes counts and progress relative to now.
func SummarizeExams(exams []models.Exam, now time.Time) *models.DashboardSummary {
	summary := &models.DashboardSummary{ExamCount: len(exams), UpcomingExams: []models.Exam{}}
	if len(exams) == 0 {
		return summary
	}

	total := 0
	for _, exam := range exams {
		total += exam.StudyProgress
	}
	summary.AverageProgress = int(math.Round(float64(total) / float64(len(exams))))

	today := truncateToDate(now)
	for _, exam := range exams {
		if truncateToDate(exam.Date).Before(today) {
			continue
		}
		if summary.DaysUntilNextExam == nil {
			days := int(truncateToDate(exam.Date).Sub(today).Hours() / 24)
			summary.DaysUntilNextExam = &days
		}
		if len(summary.UpcomingExams) < upcomingExamLimit {
			summary.UpcomingExams = append(summary.UpcomingExams, exam)
		}
	}
	return summary
}
