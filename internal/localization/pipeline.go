// Package localization turns raw catalog snapshots into display-ready
// entries for a requested language, translating text fields through the
// translation service with memoization and canonical-language fallback.
package localization

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shopfront/internal/domain"
	"shopfront/internal/translation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlaceholderDescription substitutes a missing catalog description, in
// the canonical language. On non-canonical runs it is translated like any
// other text field.
const PlaceholderDescription = "No description available"

// ErrSuperseded is returned by a run whose results arrived after a newer
// run for a different language had already started. Its results must be
// discarded by the caller: the last requested language wins. Overlapping
// runs for the same language are independent and all complete normally.
var ErrSuperseded = errors.New("localization run superseded by a newer run")

// maxInFlight bounds overlapping translation requests per run.
const maxInFlight = 8

// Source provides raw catalog entries.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// Result is the outcome of one localization run. When Fallback is set the
// batch hit a translation failure and Entries carry canonical-language
// text for every product, never a language mix.
type Result struct {
	Entries  []domain.LocalizedProduct `json:"entries"`
	Language string                    `json:"language"`
	Fallback bool                      `json:"fallback"`
}

// Pipeline produces display-ready entries for a requested language. It
// keeps no state of its own beyond the latest-run bookkeeping; localized
// entries are recomputed from scratch on every run.
type Pipeline struct {
	source     Source
	translator translation.Translator
	canonical  string
	logger     *zap.Logger

	mu       sync.Mutex
	lastGen  uint64
	lastLang string
}

// NewPipeline creates a localization pipeline. The translator should be a
// cache-backed one so repeated runs reuse memoized translations.
func NewPipeline(source Source, translator translation.Translator, canonicalLang string, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		source:     source,
		translator: translator,
		canonical:  canonicalLang,
		logger:     logger,
	}
}

// CanonicalLanguage returns the language catalog content is authored in.
func (p *Pipeline) CanonicalLanguage() string {
	return p.canonical
}

// Run fetches the catalog and returns published entries localized to the
// requested language. A catalog fetch failure aborts the run with an
// error. A translation failure anywhere in the batch falls back to
// canonical text for the whole batch and is reported via Result.Fallback,
// not as an error.
func (p *Pipeline) Run(ctx context.Context, lang string) (Result, error) {
	gen := p.begin(lang)

	products, err := p.source.Products(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	canonical := p.canonicalEntries(products)
	if lang == p.canonical {
		if p.superseded(gen, lang) {
			return Result{}, ErrSuperseded
		}
		return Result{Entries: canonical, Language: p.canonical}, nil
	}

	translated, err := p.translateBatch(ctx, canonical, lang)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if p.superseded(gen, lang) {
			return Result{}, ErrSuperseded
		}
		// All-or-nothing: discard partial results rather than showing a
		// mixed-language catalog.
		p.logger.Warn("Translation batch failed, falling back to canonical language",
			zap.String("lang", lang), zap.Error(err))
		return Result{Entries: canonical, Language: p.canonical, Fallback: true}, nil
	}

	if p.superseded(gen, lang) {
		return Result{}, ErrSuperseded
	}
	return Result{Entries: translated, Language: lang}, nil
}

// begin records a new run and returns its generation.
func (p *Pipeline) begin(lang string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastGen++
	p.lastLang = lang
	return p.lastGen
}

// superseded reports whether the display language changed after the run
// with generation gen started. A newer run for the same language does not
// supersede anything: concurrent shoppers asking for one language are
// independent requests and every one of them gets its result.
func (p *Pipeline) superseded(gen uint64, lang string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastGen != gen && p.lastLang != lang
}

// canonicalEntries maps published products straight through, defaulting a
// missing description to the canonical placeholder.
func (p *Pipeline) canonicalEntries(products []domain.Product) []domain.LocalizedProduct {
	entries := make([]domain.LocalizedProduct, 0, len(products))
	for _, prod := range products {
		if !prod.Published {
			continue
		}
		description := PlaceholderDescription
		if prod.Description != nil {
			description = *prod.Description
		}
		entries = append(entries, domain.LocalizedProduct{
			ID:          prod.ID,
			Title:       prod.Title,
			Description: description,
			Price:       prod.Price,
			ImageURL:    prod.ImageURL,
			CategoryID:  prod.CategoryID,
			Stock:       prod.Stock,
			Language:    p.canonical,
		})
	}
	return entries
}

// translateBatch translates title and description of every entry. The two
// fields of one entry and the fields of different entries are all issued
// without waiting on one another, so total latency is bounded by the
// slowest single call. The first error aborts the batch.
func (p *Pipeline) translateBatch(ctx context.Context, canonical []domain.LocalizedProduct, lang string) ([]domain.LocalizedProduct, error) {
	translated := make([]domain.LocalizedProduct, len(canonical))
	copy(translated, canonical)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for i := range translated {
		i := i
		g.Go(func() error {
			title, err := p.translator.Translate(gctx, canonical[i].Title, p.canonical, lang)
			if err != nil {
				return err
			}
			translated[i].Title = title
			return nil
		})
		g.Go(func() error {
			description, err := p.translator.Translate(gctx, canonical[i].Description, p.canonical, lang)
			if err != nil {
				return err
			}
			translated[i].Description = description
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range translated {
		translated[i].Language = lang
	}
	return translated, nil
}
