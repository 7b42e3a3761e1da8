package service

import (
	"context"
	"fmt"
	"time"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
)

// ComplaintStats alimente les cartes de synthèse du dashboard
type ComplaintStats struct {
	Total      int                              `json:"total"`
	ByStatus   map[entity.ComplaintStatus]int   `json:"byStatus"`
	ByPriority map[entity.ComplaintPriority]int `json:"byPriority"`
}

type CategoryCount struct {
	Category entity.ComplaintCategory `json:"category"`
	Count    int                      `json:"count"`
}

// TrendPoint : volumes mensuels soumis/résolus pour le graphe de tendances
type TrendPoint struct {
	Month    string `json:"month"`
	Count    int    `json:"count"`
	Resolved int    `json:"resolved"`
}

type AnalyticsService interface {
	Stats(ctx context.Context) (*ComplaintStats, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Trends(ctx context.Context) ([]TrendPoint, error)
}

type analyticsService struct {
	repo repository.ComplaintRepository
	// trendsMode : "computed" agrège les signalements réels, "fixture" sert la
	// série de démonstration (parité avec l'ancien dashboard)
	trendsMode string
	now        func() time.Time
}

func NewAnalyticsService(repo repository.ComplaintRepository, trendsMode string) AnalyticsService {
	return &analyticsService{
		repo:       repo,
		trendsMode: trendsMode,
		now:        time.Now,
	}
}

// Stats agrège en mémoire sur la liste complète ; volumétrie municipale,
// pas besoin de GROUP BY dédié
func (s *analyticsService) Stats(ctx context.Context) (*ComplaintStats, error) {
	complaints, err := s.repo.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load complaints: %w", err)
	}

	stats := &ComplaintStats{
		Total:      len(complaints),
		ByStatus:   make(map[entity.ComplaintStatus]int),
		ByPriority: make(map[entity.ComplaintPriority]int),
	}
	// Toutes les clés d'enum sont présentes, même à zéro
	for _, st := range entity.AllStatuses {
		stats.ByStatus[st] = 0
	}
	for _, p := range entity.AllPriorities {
		stats.ByPriority[p] = 0
	}

	for _, c := range complaints {
		stats.ByStatus[c.Status]++
		stats.ByPriority[c.Priority]++
	}

	return stats, nil
}

// Categories retourne une entrée par catégorie connue, dans l'ordre canonique,
// y compris celles sans aucun signalement
func (s *analyticsService) Categories(ctx context.Context) ([]CategoryCount, error) {
	complaints, err := s.repo.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load complaints: %w", err)
	}

	counts := make(map[entity.ComplaintCategory]int)
	for _, c := range complaints {
		counts[c.Category]++
	}

	result := make([]CategoryCount, 0, len(entity.AllCategories))
	for _, cat := range entity.AllCategories {
		result = append(result, CategoryCount{Category: cat, Count: counts[cat]})
	}
	return result, nil
}

func (s *analyticsService) Trends(ctx context.Context) ([]TrendPoint, error) {
	if s.trendsMode == "fixture" {
		return fixtureTrends(), nil
	}
	return s.computedTrends(ctx)
}

// computedTrends agrège les six derniers mois : soumissions par mois de dépôt,
// résolutions par mois de la première entrée de journal "resolved"
func (s *analyticsService) computedTrends(ctx context.Context) ([]TrendPoint, error) {
	complaints, err := s.repo.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load complaints: %w", err)
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

	type bucket struct{ count, resolved int }
	buckets := make(map[string]*bucket, 6)
	points := make([]TrendPoint, 0, 6)
	for i := 0; i < 6; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		buckets[key] = &bucket{}
		points = append(points, TrendPoint{Month: m.Format("Jan")})
	}

	for _, c := range complaints {
		if b, ok := buckets[c.SubmittedAt.UTC().Format("2006-01")]; ok {
			b.count++
		}
		if resolvedAt, ok := firstResolvedAt(&c); ok {
			if b, ok := buckets[resolvedAt.UTC().Format("2006-01")]; ok {
				b.resolved++
			}
		}
	}

	for i := range points {
		key := start.AddDate(0, i, 0).Format("2006-01")
		points[i].Count = buckets[key].count
		points[i].Resolved = buckets[key].resolved
	}
	return points, nil
}

func firstResolvedAt(c *entity.Complaint) (time.Time, bool) {
	for _, e := range c.Timeline {
		if e.Status == entity.StatusResolved {
			return e.Timestamp, true
		}
	}
	return time.Time{}, false
}

// fixtureTrends : série figée reprise du dashboard historique, utile en démo
// quand la base est quasi vide
func fixtureTrends() []TrendPoint {
	return []TrendPoint{
		{Month: "Jan", Count: 45, Resolved: 38},
		{Month: "Feb", Count: 52, Resolved: 45},
		{Month: "Mar", Count: 48, Resolved: 42},
		{Month: "Apr", Count: 61, Resolved: 55},
		{Month: "May", Count: 55, Resolved: 49},
		{Month: "Jun", Count: 58, Resolved: 52},
	}
}
