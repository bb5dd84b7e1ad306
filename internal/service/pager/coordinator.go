package pager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
)

// DefaultPageSize is how many listings one backend page carries.
const DefaultPageSize = 20

// ErrStale marks a fetch whose response arrived after a newer reset
// already replaced the collection. The response is discarded.
var ErrStale = errors.New("fetch superseded by a newer request")

// Source is the slice of the directory gateway the coordinator needs.
type Source interface {
	RestaurantPage(ctx context.Context, query directory.RestaurantPageQuery) (directory.RestaurantPage, error)
}

// Coordinator accumulates listing pages for one selected city. Pages are
// appended in fetch order; a reset throws the collection away and starts
// over from the first page. Every fetch is stamped with a generation so
// a slow response cannot clobber state a later reset already replaced.
type Coordinator struct {
	source   Source
	pageSize int

	mu           sync.Mutex
	generation   uint64
	city         string
	cityID       string
	usedNameJoin bool
	listings     []domain.Restaurant
	cursor       int
	total        int
	hasTotal     bool
	lastPageFull bool
}

// Option customizes coordinator construction.
type Option func(*Coordinator)

// WithPageSize overrides the backend page size.
func WithPageSize(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewCoordinator creates a paging coordinator over the given source.
func NewCoordinator(source Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:   source,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectCity switches the city scope and clears the collection. An empty
// city means the whole directory. In-flight fetches for the previous
// scope are invalidated.
func (c *Coordinator) SelectCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if canonical, ok := domain.LookupCity(city); ok {
		city = canonical
	} else {
		city = strings.TrimSpace(city)
	}
	c.generation++
	c.city = city
	c.cityID = ""
	c.clearLocked()
}

// AdoptCityIndex records backend city ids keyed by canonical name. When
// pages for the current city were fetched through the name join before
// the index arrived, the collection is refetched from the start using
// the id filter.
func (c *Coordinator) AdoptCityIndex(ctx context.Context, index map[string]string) (bool, error) {
	c.mu.Lock()
	id := ""
	if c.city != "" {
		id = index[c.city]
	}
	c.cityID = id
	needsRefetch := id != "" && c.usedNameJoin
	c.mu.Unlock()

	if !needsRefetch {
		return false, nil
	}
	if err := c.Fetch(ctx, true); err != nil {
		return false, err
	}
	return true, nil
}

// Fetch loads one page from the backend. With reset the collection is
// replaced by the first page and the cursor returns to one; otherwise
// the next page is appended. A response that lost a race against a
// newer reset is dropped and reported as ErrStale.
func (c *Coordinator) Fetch(ctx context.Context, reset bool) error {
	c.mu.Lock()
	if reset {
		c.generation++
	}
	generation := c.generation
	offset := 0
	if !reset {
		offset = c.cursor * c.pageSize
	}
	query := directory.RestaurantPageQuery{
		Limit:  c.pageSize,
		Offset: offset,
	}
	nameJoin := false
	if c.cityID != "" {
		query.CityID = c.cityID
	} else if c.city != "" {
		query.CityName = c.city
		nameJoin = true
	}
	c.mu.Unlock()

	page, err := c.source.RestaurantPage(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return ErrStale
	}
	if err != nil {
		return fmt.Errorf("fetch restaurants page: %w", err)
	}

	listings := make([]domain.Restaurant, 0, len(page.Rows))
	for _, row := range page.Rows {
		listings = append(listings, domain.NormalizeRestaurant(row))
	}
	if reset {
		c.listings = listings
		c.cursor = 1
		c.usedNameJoin = nameJoin
	} else {
		c.listings = append(c.listings, listings...)
		c.cursor++
		c.usedNameJoin = c.usedNameJoin || nameJoin
	}
	c.total = page.Total
	c.hasTotal = page.HasTotal
	c.lastPageFull = len(page.Rows) == c.pageSize
	return nil
}

// HasMore reports whether another page is worth fetching. With an exact
// backend count the loaded end offset decides; without one a full last
// page is read as "probably more".
func (c *Coordinator) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor == 0 {
		return false
	}
	if c.hasTotal {
		return c.cursor*c.pageSize < c.total
	}
	return c.lastPageFull
}

// Restaurants returns a copy of everything fetched so far.
func (c *Coordinator) Restaurants() []domain.Restaurant {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Restaurant, len(c.listings))
	copy(out, c.listings)
	return out
}

// City returns the selected city scope.
func (c *Coordinator) City() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.city
}

// Cursor returns how many pages the collection currently holds.
func (c *Coordinator) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Total returns the exact backend count when one was reported.
func (c *Coordinator) Total() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, c.hasTotal
}

func (c *Coordinator) clearLocked() {
	c.listings = nil
	c.cursor = 0
	c.total = 0
	c.hasTotal = false
	c.lastPageFull = false
	c.usedNameJoin = false
}
