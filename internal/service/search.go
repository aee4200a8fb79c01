package service

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/laureon/labtrack/internal/database/repository"
	"github.com/laureon/labtrack/internal/grid"
)

// DefaultPageSize is how many results a search page holds unless configured
// otherwise.
const DefaultPageSize = 25

// SearchService finds samples by substring match across their text fields
// and ranks results by how closely the name matches the query.
type SearchService struct {
	Samples   *repository.SampleRepo
	Spaces    *repository.SpaceRepo
	Locations *repository.LocationRepo
	Hierarchy *HierarchyService

	PageSize int
}

// SearchHit is one result row, with the sample's resolved storage position.
type SearchHit struct {
	Sample   repository.Sample
	Path     []repository.Location // root first; empty when unstored
	SpaceRef string                // e.g. "B7" when grid-stored, "" otherwise
}

// LocationName returns the innermost location holding the sample, or "".
func (h SearchHit) LocationName() string {
	if len(h.Path) == 0 {
		return ""
	}
	return h.Path[len(h.Path)-1].Name
}

// SearchPage is one page of ranked results.
type SearchPage struct {
	Hits    []SearchHit
	Page    int // 1-based
	Pages   int
	Total   int
	HasPrev bool
	HasNext bool
}

// Search runs a substring match over name, catalog number, lot number and
// description, ranks hits by levenshtein distance of name to query, and
// returns the requested page.
func (s *SearchService) Search(ctx context.Context, query string, page int) (SearchPage, error) {
	query = strings.TrimSpace(query)
	samples, err := s.Samples.List(ctx, repository.SampleFilters{Search: query})
	if err != nil {
		return SearchPage{}, err
	}
	rankByName(samples, query)

	size := s.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(samples)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	hits := make([]SearchHit, 0, end-start)
	for _, sample := range samples[start:end] {
		hit, err := s.resolveHit(ctx, sample)
		if err != nil {
			return SearchPage{}, err
		}
		hits = append(hits, hit)
	}
	return SearchPage{
		Hits:    hits,
		Page:    page,
		Pages:   pages,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < pages,
	}, nil
}

func (s *SearchService) resolveHit(ctx context.Context, sample repository.Sample) (SearchHit, error) {
	hit := SearchHit{Sample: sample}

	var holder *repository.Location
	switch {
	case sample.LocationID != nil:
		loc, err := s.Locations.Get(ctx, *sample.LocationID)
		if err != nil {
			return hit, err
		}
		holder = loc
	default:
		sp, err := s.Spaces.BySampleOccupant(ctx, sample.ID)
		if err != nil {
			return hit, err
		}
		if sp != nil {
			loc, err := s.Locations.Get(ctx, sp.LocationID)
			if err != nil {
				return hit, err
			}
			holder = loc
			hit.SpaceRef = grid.Coord{Row: sp.Row, Col: sp.Col}.Label()
		}
	}
	if holder == nil {
		return hit, nil
	}
	path, err := s.Hierarchy.Path(ctx, *holder)
	if err != nil {
		return hit, err
	}
	hit.Path = path
	return hit, nil
}

// rankByName sorts samples by edit distance of their lowercased name to the
// query, closest first, with name then id as tie-breakers so the order is
// stable across runs.
func rankByName(samples []repository.Sample, query string) {
	q := strings.ToLower(query)
	dist := make(map[string]int, len(samples))
	for _, sm := range samples {
		dist[sm.ID] = levenshtein.ComputeDistance(q, strings.ToLower(sm.Name))
	}
	sort.SliceStable(samples, func(i, j int) bool {
		di, dj := dist[samples[i].ID], dist[samples[j].ID]
		if di != dj {
			return di < dj
		}
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].ID < samples[j].ID
	})
}
