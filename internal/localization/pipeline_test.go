package localization

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"shopfront/internal/domain"
	"shopfront/internal/storage"
	"shopfront/internal/translation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

type fakeSource struct {
	products []domain.Product
	err      error
}

func (f *fakeSource) Products(context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

// fakeTranslator suffixes the target language, optionally failing for
// configured texts or blocking calls for one target language until
// released.
type fakeTranslator struct {
	mu          sync.Mutex
	calls       int
	failOn      map[string]bool
	blockTarget string
	release     chan struct{}
	blocked     chan struct{}
	blockedOnce sync.Once
}

func (f *fakeTranslator) Translate(ctx context.Context, text, _, targetLang string) (string, error) {
	if f.release != nil && targetLang == f.blockTarget {
		f.blockedOnce.Do(func() { close(f.blocked) })
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	f.calls++
	fail := f.failOn[text]
	f.mu.Unlock()

	if fail {
		return "", &translation.ServiceError{Err: errors.New("remote unavailable")}
	}
	return text + " [" + targetLang + "]", nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// slowFirstFetchSource holds its first Products call until released so a
// run can be pinned mid-flight while newer runs overtake it.
type slowFirstFetchSource struct {
	products []domain.Product
	release  chan struct{}
	fetching chan struct{}
	mu       sync.Mutex
	calls    int
}

func (s *slowFirstFetchSource) Products(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	if first {
		close(s.fetching)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.products, nil
}

func catalogFixture() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Margherita", Description: strptr("Tomato and mozzarella"), Price: 8.5, Stock: 5, Published: true},
		{ID: 2, Title: "Diavola", Description: nil, Price: 9.9, Stock: 3, Published: true},
		{ID: 3, Title: "Secret pizza", Description: strptr("Draft entry"), Price: 1, Stock: 1, Published: false},
	}
}

func newPipeline(source Source, translator translation.Translator) *Pipeline {
	return NewPipeline(source, translator, "en", zap.NewNop())
}

func TestCanonicalLanguagePassesThroughWithoutTranslation(t *testing.T) {
	tr := &fakeTranslator{}
	p := newPipeline(&fakeSource{products: catalogFixture()}, tr)

	result, err := p.Run(context.Background(), "en")
	require.NoError(t, err)

	assert.Equal(t, "en", result.Language)
	assert.False(t, result.Fallback)
	require.Len(t, result.Entries, 2, "unpublished entries are filtered")
	assert.Equal(t, "Margherita", result.Entries[0].Title)
	assert.Equal(t, "Tomato and mozzarella", result.Entries[0].Description)
	assert.Equal(t, PlaceholderDescription, result.Entries[1].Description)
	assert.Zero(t, tr.callCount())
}

func TestTranslatedRunLocalizesEveryTextField(t *testing.T) {
	tr := &fakeTranslator{}
	p := newPipeline(&fakeSource{products: catalogFixture()}, tr)

	result, err := p.Run(context.Background(), "de")
	require.NoError(t, err)

	assert.Equal(t, "de", result.Language)
	assert.False(t, result.Fallback)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "Margherita [de]", result.Entries[0].Title)
	assert.Equal(t, "Tomato and mozzarella [de]", result.Entries[0].Description)
	assert.Equal(t, PlaceholderDescription+" [de]", result.Entries[1].Description)
	for _, e := range result.Entries {
		assert.Equal(t, "de", e.Language)
	}
	// Two text fields per published entry.
	assert.Equal(t, 4, tr.callCount())
}

func TestTranslatedRunPreservesNonTextFields(t *testing.T) {
	p := newPipeline(&fakeSource{products: catalogFixture()}, &fakeTranslator{})

	result, err := p.Run(context.Background(), "fr")
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Entries[0].ID)
	assert.Equal(t, 8.5, result.Entries[0].Price)
	assert.Equal(t, 5, result.Entries[0].Stock)
}

func TestCatalogFailureAbortsRun(t *testing.T) {
	p := newPipeline(&fakeSource{err: errors.New("connection refused")}, &fakeTranslator{})

	_, err := p.Run(context.Background(), "de")
	assert.Error(t, err)
}

func TestSingleTranslationFailureFallsBackForWholeBatch(t *testing.T) {
	tr := &fakeTranslator{failOn: map[string]bool{"Diavola": true}}
	p := newPipeline(&fakeSource{products: catalogFixture()}, tr)

	result, err := p.Run(context.Background(), "de")
	require.NoError(t, err, "fallback is a recoverable condition, not an error")

	assert.True(t, result.Fallback)
	assert.Equal(t, "en", result.Language)
	require.Len(t, result.Entries, 2)
	for _, e := range result.Entries {
		assert.Equal(t, "en", e.Language)
		assert.False(t, strings.Contains(e.Title, "[de]"),
			"no partially translated entries may leak through")
	}
}

func TestCacheBackedTranslatorMemoizesAcrossRuns(t *testing.T) {
	tr := &fakeTranslator{}
	cache := translation.NewCache(storage.NewMemoryKV(), zap.NewNop())
	p := newPipeline(&fakeSource{products: catalogFixture()}, translation.NewCachedTranslator(cache, tr))

	_, err := p.Run(context.Background(), "de")
	require.NoError(t, err)
	first := tr.callCount()

	_, err = p.Run(context.Background(), "de")
	require.NoError(t, err)

	assert.Equal(t, first, tr.callCount(), "second run must be served from cache")
}

func TestConcurrentSameLanguageRunsAllSucceed(t *testing.T) {
	for _, lang := range []string{"en", "de"} {
		t.Run(lang, func(t *testing.T) {
			release := make(chan struct{})
			src := &slowFirstFetchSource{products: catalogFixture(), release: release, fetching: make(chan struct{})}
			p := NewPipeline(src, &fakeTranslator{}, "en", zap.NewNop())

			firstDone := make(chan error, 1)
			go func() {
				_, err := p.Run(context.Background(), lang)
				firstDone <- err
			}()
			<-src.fetching

			// A second shopper asks for the same language while the first
			// fetch is still in flight, and finishes first.
			result, err := p.Run(context.Background(), lang)
			require.NoError(t, err)
			assert.Equal(t, lang, result.Language)

			close(release)
			assert.NoError(t, <-firstDone,
				"a run must not fail because an identical concurrent run finished first")
		})
	}
}

func TestSupersededRunDiscardsItsResults(t *testing.T) {
	release := make(chan struct{})
	tr := &fakeTranslator{blockTarget: "de", release: release, blocked: make(chan struct{})}
	p := newPipeline(&fakeSource{products: catalogFixture()}, tr)

	firstDone := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background(), "de")
		firstDone <- err
	}()
	<-tr.blocked

	// The shopper switches language while the first run is still blocked
	// on the translation service. The newer run completes normally.
	result, err := p.Run(context.Background(), "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", result.Language)

	// Releasing the stale run must make it discard its own results.
	close(release)
	assert.ErrorIs(t, <-firstDone, ErrSuperseded)
}
