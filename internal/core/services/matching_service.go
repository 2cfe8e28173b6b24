package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/config"
	"helpbridge/internal/core/domain"
	"helpbridge/internal/pkg/geo"

	"gorm.io/gorm"
)

// Application list types a volunteer can request
const (
	ListTypeOpen       = "open"
	ListTypeInProgress = "in_progress"
	ListTypeDone       = "done"
)

// MatchedApplication is an application paired with its distance from the
// volunteer. Distance is only meaningful for open listings.
type MatchedApplication struct {
	*models.Application
	DistanceKm float64 `json:"distance_km"`
}

// MatchingService selects the applications a volunteer is eligible to see
type MatchingService struct {
	applicationRepo repositories.ApplicationRepository
	customerRepo    repositories.CustomerRepository
	locationRepo    repositories.LocationRepository
	cfg             config.MatchingConfig
}

// NewMatchingService creates a new matching service
func NewMatchingService(
	applicationRepo repositories.ApplicationRepository,
	customerRepo repositories.CustomerRepository,
	locationRepo repositories.LocationRepository,
	cfg config.MatchingConfig,
) *MatchingService {
	return &MatchingService{
		applicationRepo: applicationRepo,
		customerRepo:    customerRepo,
		locationRepo:    locationRepo,
		cfg:             cfg,
	}
}

// FindEligible returns the applications visible to the volunteer for the
// given list type. Open listings are filtered by category subscription and
// haversine distance from the volunteer's registered location, then sorted
// nearest first. In-progress and done listings are bound to the executor and
// skip the distance filter.
func (s *MatchingService) FindEligible(ctx context.Context, volunteer *models.Customer, listType string, radiusKm float64) ([]*MatchedApplication, error) {
	now := time.Now()

	switch listType {
	case ListTypeOpen:
		return s.findOpen(ctx, volunteer, radiusKm, now)
	case ListTypeInProgress:
		return s.listForExecutor(ctx, volunteer, false, now)
	case ListTypeDone:
		return s.listForExecutor(ctx, volunteer, true, now)
	default:
		return nil, domain.ErrInvalidListType
	}
}

func (s *MatchingService) findOpen(ctx context.Context, volunteer *models.Customer, radiusKm float64, now time.Time) ([]*MatchedApplication, error) {
	// 1. The volunteer's registered location anchors the distance filter
	origin, err := s.volunteerOrigin(ctx, volunteer)
	if err != nil {
		return nil, err
	}

	// 2. Category subscriptions. An empty set matches everything or
	// nothing depending on deployment policy.
	subscribed, err := s.customerRepo.CategoryIDs(ctx, volunteer.ID)
	if err != nil {
		return nil, err
	}
	if len(subscribed) == 0 && !s.cfg.EmptySubscriptionMatchesAll {
		return []*MatchedApplication{}, nil
	}
	subscribedSet := make(map[uint]bool, len(subscribed))
	for _, id := range subscribed {
		subscribedSet[id] = true
	}

	// 3. Filter open applications by category and radius
	apps, err := s.applicationRepo.ListOpenActive(ctx, now)
	if err != nil {
		return nil, err
	}

	matched := make([]*MatchedApplication, 0, len(apps))
	for _, app := range apps {
		if len(subscribed) > 0 && !subscribedSet[app.CategoryID] {
			continue
		}
		if app.Location == nil {
			continue
		}
		distance := geo.DistanceKm(origin, geo.Point{
			Latitude:  app.Location.Latitude,
			Longitude: app.Location.Longitude,
		})
		if radiusKm > 0 && distance > radiusKm {
			continue
		}
		matched = append(matched, &MatchedApplication{Application: app, DistanceKm: distance})
	}

	// 4. Nearest first
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DistanceKm < matched[j].DistanceKm
	})
	return matched, nil
}

func (s *MatchingService) listForExecutor(ctx context.Context, volunteer *models.Customer, done bool, now time.Time) ([]*MatchedApplication, error) {
	apps, err := s.applicationRepo.ListByExecutor(ctx, volunteer.ID, done, now)
	if err != nil {
		return nil, err
	}

	matched := make([]*MatchedApplication, 0, len(apps))
	for _, app := range apps {
		matched = append(matched, &MatchedApplication{Application: app})
	}
	return matched, nil
}

// volunteerOrigin loads the volunteer's registered location
func (s *MatchingService) volunteerOrigin(ctx context.Context, volunteer *models.Customer) (geo.Point, error) {
	if volunteer.Location != nil {
		return geo.Point{
			Latitude:  volunteer.Location.Latitude,
			Longitude: volunteer.Location.Longitude,
		}, nil
	}
	if volunteer.LocationID == nil {
		return geo.Point{}, domain.ErrLocationNotFound
	}

	location, err := s.locationRepo.GetByID(ctx, *volunteer.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return geo.Point{}, domain.ErrLocationNotFound
		}
		return geo.Point{}, err
	}
	return geo.Point{Latitude: location.Latitude, Longitude: location.Longitude}, nil
}

// Rating returns volunteers ranked by closed applications, most first
func (s *MatchingService) Rating(ctx context.Context) ([]repositories.RatingEntry, error) {
	return s.applicationRepo.Rating(ctx)
}
