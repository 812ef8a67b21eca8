package translation

import "context"

// CachedTranslator consults the cache before delegating to the remote
// client and writes every successful translation back through. Identical
// triples therefore cost exactly one network call across sessions.
type CachedTranslator struct {
	cache *Cache
	next  Translator
}

// NewCachedTranslator wraps a translator with cache memoization
func NewCachedTranslator(cache *Cache, next Translator) *CachedTranslator {
	return &CachedTranslator{cache: cache, next: next}
}

func (t *CachedTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if translated, ok := t.cache.Get(text, sourceLang, targetLang); ok {
		return translated, nil
	}

	translated, err := t.next.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	t.cache.Put(ctx, text, sourceLang, targetLang, translated)
	return translated, nil
}
