package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tour-booking-server/models"
	"tour-booking-server/repository"
)

type SearchService struct {
	store repository.Store
}

func NewSearchService(store repository.Store) *SearchService {
	return &SearchService{store: store}
}

// SearchQuery holds the optional criteria of a tour search.
type SearchQuery struct {
	Keyword   string
	MinPrice  *float64
	MaxPrice  *float64
	StartDate *time.Time
	EndDate   *time.Time
	Location  string
}

// ParseSearchQuery reads the search parameters through get. Empty values are
// treated as absent.
func ParseSearchQuery(get func(key string) string) (SearchQuery, error) {
	q := SearchQuery{
		Keyword:  strings.TrimSpace(get("query")),
		Location: strings.TrimSpace(get("location")),
	}
	verr := &ValidationError{Fields: map[string]string{}}

	parsePrice := func(key string) *float64 {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			verr.Fields[key] = "Enter a number."
			return nil
		}
		if v < 0 {
			verr.Fields[key] = "Ensure this value is greater than or equal to 0."
			return nil
		}
		return &v
	}
	parseDate := func(key string) *time.Time {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return nil
		}
		d, err := ParseDate(raw)
		if err != nil {
			verr.Fields[key] = "Enter a valid date."
			return nil
		}
		return &d
	}

	q.MinPrice = parsePrice("min_price")
	q.MaxPrice = parsePrice("max_price")
	q.StartDate = parseDate("start_date")
	q.EndDate = parseDate("end_date")

	if len(verr.Fields) > 0 {
		return q, verr
	}
	return q, nil
}

// Search filters tours, best rated first. The price range only applies when
// both bounds are given; a single bound is ignored. Location is not used.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) ([]models.Tour, error) {
	filter := repository.TourFilter{
		Keyword:   strings.TrimSpace(q.Keyword),
		StartFrom: q.StartDate,
		EndBy:     q.EndDate,
	}
	if q.MinPrice != nil && q.MaxPrice != nil {
		filter.PriceRange = &repository.PriceRange{Min: *q.MinPrice, Max: *q.MaxPrice}
	}
	return s.store.Tours().Search(ctx, filter)
}
