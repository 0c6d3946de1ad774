// Package recommend aggregates recommendations across multiple seed
// titles into one deduplicated, ranked list.
package recommend

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"watchhive/models"
	"watchhive/utils/similarity"
)

var ErrNoSeeds = errors.New("at least one seed is required")

const (
	// maxResults caps the ranked output.
	maxResults = 20
	// minTitleScore is the cut-off below which a fuzzy title match is
	// discarded as noise.
	minTitleScore = 0.3
	// seedFetchConcurrency bounds the parallel per-seed catalogue calls.
	seedFetchConcurrency = 4
)

type catalogue interface {
	Recommendations(ctx context.Context, mediaType string, id int64) ([]models.Title, error)
	Search(ctx context.Context, mediaType, query string) ([]models.Title, error)
}

// Service scores and ranks cross-seed recommendations.
type Service struct {
	catalogue catalogue
}

func NewService(cat catalogue) *Service {
	return &Service{catalogue: cat}
}

// seedBatch is the raw yield of one seed for one media type. For fuzzy
// seeds, scores runs parallel to titles.
type seedBatch struct {
	titles         []models.Title
	scores         []float64
	fromSimilarity bool
}

// candidate is one deduplicated title with its accumulated evidence.
type candidate struct {
	title models.Title
	// fromSimilarity marks entries found by fuzzy title search, which
	// outrank id-lookup entries.
	fromSimilarity bool
	// simScore is the best fuzzy score across seeds.
	simScore float64
	// sources counts how many seed batches produced this entry.
	sources int
}

type candidateKey struct {
	mediaType string
	id        int64
}

// ForSeeds fetches each seed's recommendations concurrently, merges the
// results, and ranks them. A seed whose fetch fails is skipped; the
// remaining seeds still produce a result.
func (s *Service) ForSeeds(ctx context.Context, seeds []models.RecommendationSeed) ([]models.Title, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	var mu sync.Mutex
	var batches []seedBatch

	p := pool.New().WithMaxGoroutines(seedFetchConcurrency)
	for _, seed := range seeds {
		p.Go(func() {
			res, err := s.fetchSeed(ctx, seed)
			if err != nil {
				log.Printf("[recommend] seed fetch failed (%+v): %v", seed, err)
				return
			}
			mu.Lock()
			batches = append(batches, res...)
			mu.Unlock()
		})
	}
	p.Wait()

	merged := map[candidateKey]*candidate{}
	for _, b := range batches {
		for i, title := range b.titles {
			key := candidateKey{mediaType: title.MediaType, id: title.ID}
			c, ok := merged[key]
			if !ok {
				c = &candidate{title: title}
				merged[key] = c
			}
			c.sources++
			if b.fromSimilarity {
				c.fromSimilarity = true
				if b.scores[i] > c.simScore {
					c.simScore = b.scores[i]
				}
			}
		}
	}

	ranked := make([]*candidate, 0, len(merged))
	for _, c := range merged {
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.fromSimilarity != b.fromSimilarity {
			return a.fromSimilarity
		}
		if a.fromSimilarity && a.simScore != b.simScore {
			return a.simScore > b.simScore
		}
		if a.sources != b.sources {
			return a.sources > b.sources
		}
		return a.title.VoteAverage > b.title.VoteAverage
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	out := make([]models.Title, len(ranked))
	for i, c := range ranked {
		out[i] = c.title
	}
	return out, nil
}

// fetchSeed resolves one seed into result batches. An id seed yields the
// catalogue's recommendation list; a free-text seed yields fuzzy search
// matches above the score cut-off, across both media types when the seed
// does not pin one.
func (s *Service) fetchSeed(ctx context.Context, seed models.RecommendationSeed) ([]seedBatch, error) {
	if seed.ContentID != 0 {
		mediaType := seed.MediaType
		if mediaType == "" {
			mediaType = models.MediaTypeTV
		}
		titles, err := s.catalogue.Recommendations(ctx, mediaType, seed.ContentID)
		if err != nil {
			return nil, err
		}
		return []seedBatch{{titles: titles}}, nil
	}

	query := strings.TrimSpace(seed.Title)
	if query == "" {
		return nil, errors.New("seed has neither id nor title")
	}

	mediaTypes := []string{seed.MediaType}
	if seed.MediaType == "" {
		mediaTypes = []string{models.MediaTypeTV, models.MediaTypeMovie}
	}

	var batches []seedBatch
	for _, mt := range mediaTypes {
		found, err := s.catalogue.Search(ctx, mt, query)
		if err != nil {
			return nil, err
		}
		var titles []models.Title
		var scores []float64
		for _, title := range found {
			score := similarity.TitleScore(query, title.Name)
			if score <= minTitleScore {
				continue
			}
			titles = append(titles, title)
			scores = append(scores, score)
		}
		if len(titles) > 0 {
			batches = append(batches, seedBatch{titles: titles, scores: scores, fromSimilarity: true})
		}
	}
	return batches, nil
}
