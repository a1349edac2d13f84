package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// minDescriptionTermLen drops short filler words from description terms.
const minDescriptionTermLen = 3

// searchDoc is the per-product document stored in the index.
type searchDoc struct {
	ProductID  string  `json:"product_id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	CategoryID string  `json:"category_id,omitempty"`
	Colour     string  `json:"colour,omitempty"`
	Style      string  `json:"style,omitempty"`
	Finish     string  `json:"finish,omitempty"`
	Range      string  `json:"range,omitempty"`
	InStock    bool    `json:"in_stock"`
}

// SearchIndexJob rebuilds the set-based inverted search index from scratch:
// it drops every prior index key, writes one document per product, adds the
// product to the set of every derived term and finishes with the facet
// metadata sets.
type SearchIndexJob struct {
	base
	cfg      Config
	products ActiveProductSource
	stock    StockReader
	cache    cache.Store
	events   *producer.Events
}

func NewSearchIndexJob(
	cfg Config,
	products ActiveProductSource,
	stock StockReader,
	store cache.Store,
	events *producer.Events,
	log *zap.Logger,
) *SearchIndexJob {
	j := &SearchIndexJob{
		cfg:      cfg,
		products: products,
		stock:    stock,
		cache:    store,
		events:   events,
	}
	j.name = "search-index-rebuild"
	j.schedule = Schedule{Every: cfg.Search.Interval}
	j.reportTTL = cfg.Search.ReportTTL
	j.reporter = newReporter(store, events, log)
	j.log = log
	return j
}

func (j *SearchIndexJob) Execute(ctx context.Context) (Result, error) {
	return j.run(ctx, func(ctx context.Context, res *Result) error {
		products, err := j.products.FindActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active products: %w", err)
		}
		res.TotalChecked = len(products)

		// Clearing the old index is part of setup: failing here is fatal,
		// a half-cleared index would serve stale hits.
		removed, err := j.cache.DelPattern(ctx, cache.SearchPattern())
		if err != nil {
			return fmt.Errorf("failed to clear search index: %w", err)
		}
		j.log.Debug("cleared search index", zap.Int("removed", removed))

		terms := map[string]struct{}{}
		limiter := j.cfg.limiter()
		_, failed, err := forEachBatch(ctx, products, j.cfg.BatchSize, limiter, func(ctx context.Context, p *domain.Product) error {
			if err := j.indexProduct(ctx, p, terms, res); err != nil {
				j.log.Warn("failed to index product",
					zap.String("productId", p.ID), zap.Error(err))
				return err
			}
			return nil
		})
		res.Errors = failed
		if err != nil {
			return err
		}

		if err := j.writeFacets(ctx, products); err != nil {
			return fmt.Errorf("failed to write facet metadata: %w", err)
		}

		res.Counters["terms"] = len(terms)
		if err := j.events.SearchIndexRebuilt(ctx, payload.SearchIndexRebuilt{
			IndexedCount: res.Counters["indexed"],
			TermCount:    len(terms),
		}); err != nil {
			j.log.Warn("failed to announce index rebuild", zap.Error(err))
		}
		return nil
	})
}

func (j *SearchIndexJob) indexProduct(ctx context.Context, p *domain.Product, terms map[string]struct{}, res *Result) error {
	inStock := false
	inv, err := j.stock.FindByProductID(ctx, p.ID)
	switch {
	case err == nil:
		inStock = inv.AvailableStock > 0
	case errors.Is(err, domain.ErrNotFound):
	default:
		return err
	}

	doc := searchDoc{
		ProductID:  p.ID,
		Title:      p.Title,
		Price:      p.Price,
		CategoryID: p.CategoryID,
		Colour:     p.Colour,
		Style:      p.Style,
		Finish:     p.Finish,
		Range:      p.Range,
		InStock:    inStock,
	}
	if err := j.cache.Set(ctx, cache.SearchDocKey(p.ID), doc, 0); err != nil {
		return err
	}

	for _, term := range deriveTerms(p, inStock) {
		if err := j.cache.SAdd(ctx, cache.SearchTermKey(term), p.ID); err != nil {
			return err
		}
		terms[term] = struct{}{}
	}

	res.Counters["indexed"]++
	return nil
}

// writeFacets stores the distinct value list per facet, scanned from the
// full product set.
func (j *SearchIndexJob) writeFacets(ctx context.Context, products []*domain.Product) error {
	facets := map[string]func(p *domain.Product) string{
		"categories": func(p *domain.Product) string { return p.CategoryID },
		"colours":    func(p *domain.Product) string { return p.Colour },
		"styles":     func(p *domain.Product) string { return p.Style },
		"finishes":   func(p *domain.Product) string { return p.Finish },
		"ranges":     func(p *domain.Product) string { return p.Range },
	}

	for facet, extract := range facets {
		values := lo.Uniq(lo.FilterMap(products, func(p *domain.Product, _ int) (string, bool) {
			v := extract(p)
			return v, v != ""
		}))
		if len(values) == 0 {
			continue
		}
		if err := j.cache.SAdd(ctx, cache.SearchMetaKey(facet), values...); err != nil {
			return err
		}
	}
	return nil
}

// deriveTerms produces the normalized terms a product is findable under.
func deriveTerms(p *domain.Product, inStock bool) []string {
	var terms []string
	terms = append(terms, tokenize(p.Title, 1)...)
	terms = append(terms, tokenize(p.Description, minDescriptionTermLen)...)

	for _, v := range []string{p.CategoryID, p.Colour, p.Style, p.Finish, p.Range} {
		if t := normalizeTerm(v); t != "" {
			terms = append(terms, t)
		}
	}

	terms = append(terms, priceBucket(p.Price))
	if inStock {
		terms = append(terms, "in-stock")
	} else {
		terms = append(terms, "out-of-stock")
	}
	return lo.Uniq(terms)
}

// tokenize splits text on non-alphanumeric runes and keeps lowercase tokens
// of at least minLen runes.
func tokenize(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return lo.Filter(fields, func(f string, _ int) bool {
		return len([]rune(f)) >= minLen
	})
}

// normalizeTerm turns a facet value into a single hyphenated term.
func normalizeTerm(value string) string {
	return strings.Join(tokenize(value, 1), "-")
}

// priceBucket maps a price to a coarse range term for faceted filtering.
func priceBucket(price float64) string {
	switch {
	case price < 100:
		return "price-under-100"
	case price < 500:
		return "price-100-500"
	case price < 1000:
		return "price-500-1000"
	case price < 5000:
		return "price-1000-5000"
	default:
		return "price-over-5000"
	}
}
