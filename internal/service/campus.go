package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	mongoadapter "github.com/somoapp/campus-events/internal/adapters/mongo"
	redisadapter "github.com/somoapp/campus-events/internal/adapters/redis"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/geo"
	"github.com/somoapp/campus-events/internal/observability"
)

// MaxNearest caps top-K nearest results regardless of the requested limit.
const MaxNearest = 3

const (
	eventsPerCampus = 10
	campusCacheTTL  = 5 * time.Minute
)

type CampusService struct {
	campuses   *mongoadapter.CampusRepository
	users      *mongoadapter.UserRepository
	events     *mongoadapter.EventRepository
	cache      *redisadapter.Cache
	serializer *EventSerializer
	logger     observability.Logger
}

func NewCampusService(
	campuses *mongoadapter.CampusRepository,
	users *mongoadapter.UserRepository,
	events *mongoadapter.EventRepository,
	cache *redisadapter.Cache,
	serializer *EventSerializer,
	logger observability.Logger,
) *CampusService {
	return &CampusService{
		campuses:   campuses,
		users:      users,
		events:     events,
		cache:      cache,
		serializer: serializer,
		logger:     logger,
	}
}

// NearestQuery carries the raw coordinate strings exactly as they arrived so
// "missing" and "malformed" stay distinguishable.
type NearestQuery struct {
	RawLat      string
	RawLng      string
	ViewerEmail string
}

type NearestResult struct {
	University domain.RankedCampus `json:"university"`
	Fallback   bool                `json:"fallback"`
}

type NearestManyResult struct {
	Universities []domain.RankedCampus `json:"universities"`
	Fallback     bool                  `json:"fallback"`
}

// CampusEvents pairs a ranked campus with its soonest-upcoming events.
type CampusEvents struct {
	University domain.RankedCampus `json:"university"`
	Events     []EventResponse     `json:"events"`
}

type NearestWithEventsResult struct {
	Results  []CampusEvents `json:"results"`
	Fallback bool           `json:"fallback"`
}

// RankByDistance annotates each campus with its haversine distance to the
// query point and sorts ascending. The sort is stable: equidistant campuses
// keep their storage order.
func RankByDistance(campuses []domain.Campus, lat, lng float64) []domain.RankedCampus {
	ranked := make([]domain.RankedCampus, 0, len(campuses))
	for _, c := range campuses {
		ranked = append(ranked, domain.RankedCampus{
			Campus:     c,
			DistanceKM: geo.Haversine(lat, lng, c.Latitude, c.Longitude),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKM < ranked[j].DistanceKM
	})
	return ranked
}

// CapLimit clamps a requested top-K to [1, MaxNearest], using def when the
// caller supplied nothing useful.
func CapLimit(requested, def int) int {
	if requested <= 0 {
		requested = def
	}
	if requested > MaxNearest {
		return MaxNearest
	}
	return requested
}

func (s *CampusService) Nearest(ctx context.Context, q NearestQuery) (*NearestResult, error) {
	lat, lng, fallback, err := s.resolveCoordinates(ctx, q)
	if err != nil {
		return nil, err
	}

	ranked, err := s.rankAll(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	return &NearestResult{University: ranked[0], Fallback: fallback}, nil
}

func (s *CampusService) NearestMany(ctx context.Context, q NearestQuery, requested int) (*NearestManyResult, error) {
	limit := CapLimit(requested, 2)

	lat, lng, fallback, err := s.resolveCoordinates(ctx, q)
	if err != nil {
		return nil, err
	}

	ranked, err := s.rankAll(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return &NearestManyResult{Universities: ranked, Fallback: fallback}, nil
}

// NearestWithEvents joins each top-K campus with up to ten soonest-upcoming
// events whose location text contains the campus name or its first word.
// A text heuristic, not a foreign-key join: overlapping campus names can
// both match the same event.
func (s *CampusService) NearestWithEvents(ctx context.Context, q NearestQuery, requested int) (*NearestWithEventsResult, error) {
	limit := CapLimit(requested, MaxNearest)

	lat, lng, fallback, err := s.resolveCoordinates(ctx, q)
	if err != nil {
		return nil, err
	}

	ranked, err := s.rankAll(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]CampusEvents, len(ranked))
	g, gctx := errgroup.WithContext(ctx)
	for i, uni := range ranked {
		i, uni := i, uni
		g.Go(func() error {
			keywords := []string{uni.Name}
			if first := firstWord(uni.Name); first != uni.Name {
				keywords = append(keywords, first)
			}
			events, err := s.events.FindUpcomingByKeywords(gctx, keywords, eventsPerCampus)
			if err != nil {
				return err
			}
			results[i] = CampusEvents{
				University: uni,
				Events:     s.serializer.SerializeAll(gctx, events, q.ViewerEmail),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &NearestWithEventsResult{Results: results, Fallback: fallback}, nil
}

// List returns campuses, optionally filtered by a name search. The
// unfiltered list is served from the Redis cache when possible.
func (s *CampusService) List(ctx context.Context, search string) ([]domain.Campus, error) {
	search = strings.TrimSpace(search)
	if search == "" && s.cache != nil {
		if cached, err := s.cache.GetCampuses(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	campuses, err := s.campuses.List(ctx, search)
	if err != nil {
		return nil, err
	}
	if campuses == nil {
		campuses = []domain.Campus{}
	}

	if search == "" && s.cache != nil {
		if err := s.cache.SetCampuses(ctx, campuses, campusCacheTTL); err != nil {
			s.logger.Warn("failed to cache campus list: ", err)
		}
	}
	return campuses, nil
}

type DomainCheck struct {
	Allowed    bool   `json:"allowed"`
	University string `json:"university,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ValidateDomain reports whether an email domain belongs to a recognized
// campus. Pure lookup, no mutation.
func (s *CampusService) ValidateDomain(ctx context.Context, emailDomain string) (*DomainCheck, error) {
	emailDomain = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(emailDomain, "@")))
	if emailDomain == "" {
		return nil, domain.ErrInvalidInput
	}

	campus, err := s.campuses.FindByDomain(ctx, emailDomain)
	if errors.Is(err, domain.ErrNotFound) {
		return &DomainCheck{Allowed: false, Message: "domain does not match a recognized university"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &DomainCheck{Allowed: true, University: campus.Name}, nil
}

func (s *CampusService) rankAll(ctx context.Context, lat, lng float64) ([]domain.RankedCampus, error) {
	campuses, err := s.campuses.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(campuses) == 0 {
		return nil, domain.ErrNoCampuses
	}
	return RankByDistance(campuses, lat, lng), nil
}

// resolveCoordinates parses the raw lat/lng, substituting the viewer's
// home-campus coordinates when both are absent. The fallback flag lets
// callers distinguish a measured answer from a substituted one.
func (s *CampusService) resolveCoordinates(ctx context.Context, q NearestQuery) (lat, lng float64, fallback bool, err error) {
	if q.RawLat == "" && q.RawLng == "" {
		if q.ViewerEmail == "" {
			return 0, 0, false, domain.ErrMissingCoordinates
		}
		user, err := s.users.FindByEmail(ctx, q.ViewerEmail)
		if errors.Is(err, domain.ErrNotFound) {
			return 0, 0, false, domain.ErrMissingCoordinates
		}
		if err != nil {
			return 0, 0, false, err
		}
		campus, err := s.campuses.FindByID(ctx, user.CampusID)
		if errors.Is(err, domain.ErrNotFound) {
			return 0, 0, false, domain.ErrMissingCoordinates
		}
		if err != nil {
			return 0, 0, false, err
		}
		observability.NearestLookupsTotal.WithLabelValues("fallback").Inc()
		return campus.Latitude, campus.Longitude, true, nil
	}

	if q.RawLat == "" || q.RawLng == "" {
		return 0, 0, false, domain.ErrMissingCoordinates
	}

	lat, latErr := strconv.ParseFloat(q.RawLat, 64)
	lng, lngErr := strconv.ParseFloat(q.RawLng, 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, false, domain.ErrInvalidCoordinates
	}
	observability.NearestLookupsTotal.WithLabelValues("gps").Inc()
	return lat, lng, false, nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
