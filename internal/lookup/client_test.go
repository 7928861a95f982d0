// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/internal/identifier"
	"github.com/pdiddy/cite-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

// newTestClient builds a client with pacing disabled and the given cache.
func newTestClient(t *testing.T, store *cache.Store) *Client {
	t.Helper()
	return NewClient(
		types.LookupConfig{MaxRetries: 3},
		WithLimiter(rate.NewLimiter(rate.Inf, 0)),
		WithCache(store),
	)
}

const crossrefBody = `{"message":{
	"DOI":"10.1000/xyz123",
	"URL":"http://dx.doi.org/10.1000/xyz123",
	"title":["A Study of Things"],
	"container-title":["Journal of Things"],
	"author":[
		{"given":"Ada","family":"Lovelace"},
		{"name":"European Commission"}
	],
	"issued":{"date-parts":[[2021,3,14]]}
}}`

func TestFetchByIdentifierCrossRef(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(crossrefBody))
	}))
	defer ts.Close()
	oldBase := crossrefWorksBase
	crossrefWorksBase = ts.URL
	defer func() { crossrefWorksBase = oldBase }()

	c := newTestClient(t, nil)
	p, err := c.FetchByIdentifier(context.Background(), identifier.Normalize("10.1000/xyz123"), 0)
	if err != nil {
		t.Fatalf("FetchByIdentifier: %v", err)
	}

	if p.Title != "A Study of Things" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Container != "Journal of Things" {
		t.Errorf("container = %q", p.Container)
	}
	if len(p.Contributors) != 2 {
		t.Fatalf("contributors = %+v", p.Contributors)
	}
	if p.Contributors[0].Family != "Lovelace" || p.Contributors[0].Given != "Ada" {
		t.Errorf("personal contributor = %+v", p.Contributors[0])
	}
	if !p.Contributors[1].IsOrganization() || p.Contributors[1].Literal != "European Commission" {
		t.Errorf("organizational contributor = %+v", p.Contributors[1])
	}
	if p.Date.Year() != 2021 || p.Date.Month() != time.March {
		t.Errorf("date = %v", p.Date)
	}
	if len(p.Identifiers) == 0 || p.Identifiers[0].Canonical != "doi:10.1000/xyz123" {
		t.Errorf("identifiers = %+v", p.Identifiers)
	}
}

func TestFetchByIdentifierCachesPayload(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(crossrefBody))
	}))
	defer ts.Close()
	oldBase := crossrefWorksBase
	crossrefWorksBase = ts.URL
	defer func() { crossrefWorksBase = oldBase }()

	store, err := cache.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	c := newTestClient(t, store)
	id := identifier.Normalize("10.1000/xyz123")

	first, err := c.FetchByIdentifier(context.Background(), id, time.Hour)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := c.FetchByIdentifier(context.Background(), id, time.Hour)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("network calls = %d, want 1 (second lookup should hit the cache)", got)
	}
	if second.Source != "cache" {
		t.Errorf("second payload source = %q, want cache", second.Source)
	}
	if first.Title != second.Title {
		t.Errorf("cached payload differs: %q vs %q", first.Title, second.Title)
	}
}

func TestFetchRefetchesExpiredCacheEntry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(crossrefBody))
	}))
	defer ts.Close()
	oldBase := crossrefWorksBase
	crossrefWorksBase = ts.URL
	defer func() { crossrefWorksBase = oldBase }()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store, err := cache.Open(t.TempDir(), func() time.Time { return now })
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	c := newTestClient(t, store)
	id := identifier.Normalize("10.1000/xyz123")

	if _, err := c.FetchByIdentifier(context.Background(), id, time.Hour); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	now = now.Add(2 * time.Hour)
	second, err := c.FetchByIdentifier(context.Background(), id, time.Hour)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("network calls = %d, want 2 (expired entry should refetch)", got)
	}
	if second.Source != "crossref" {
		t.Errorf("second payload source = %q, want crossref", second.Source)
	}
}

func TestFetchRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(crossrefBody))
	}))
	defer ts.Close()
	oldBase := crossrefWorksBase
	crossrefWorksBase = ts.URL
	defer func() { crossrefWorksBase = oldBase }()

	c := newTestClient(t, nil)
	p, err := c.FetchByIdentifier(context.Background(), identifier.Normalize("10.1000/xyz123"), 0)
	if err != nil {
		t.Fatalf("FetchByIdentifier: %v", err)
	}
	if p.Title != "A Study of Things" {
		t.Errorf("title = %q", p.Title)
	}
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("calls = %d, want 4 (three rate-limited attempts then success)", got)
	}
}

func TestFetchPermanentFailureNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	oldBase := crossrefWorksBase
	crossrefWorksBase = ts.URL
	defer func() { crossrefWorksBase = oldBase }()

	c := newTestClient(t, nil)
	_, err := c.FetchByIdentifier(context.Background(), identifier.Normalize("10.1000/xyz123"), 0)

	lerr, ok := err.(*LookupError)
	if !ok {
		t.Fatalf("err = %v, want *LookupError", err)
	}
	if lerr.Kind != ErrPermanent || lerr.Retryable() {
		t.Errorf("error kind = %v retryable = %v", lerr.Kind, lerr.Retryable())
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestFetchDataCiteFallbackOnNotFound(t *testing.T) {
	crTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer crTS.Close()
	dcTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"attributes":{
			"titles":[{"title":"A Dataset of Things"}],
			"creators":[{"name":"Zenodo Community","nameType":"Organizational"}],
			"publisher":"Zenodo",
			"publicationYear":2022
		}}}`))
	}))
	defer dcTS.Close()

	oldCR, oldDC := crossrefWorksBase, dataciteAPIBase
	crossrefWorksBase, dataciteAPIBase = crTS.URL, dcTS.URL
	defer func() { crossrefWorksBase, dataciteAPIBase = oldCR, oldDC }()

	c := newTestClient(t, nil)
	p, err := c.FetchByIdentifier(context.Background(), identifier.Normalize("10.5281/zenodo.123"), 0)
	if err != nil {
		t.Fatalf("FetchByIdentifier: %v", err)
	}
	if p.Source != "datacite" {
		t.Errorf("source = %q, want datacite", p.Source)
	}
	if p.Title != "A Dataset of Things" {
		t.Errorf("title = %q", p.Title)
	}
	if len(p.Contributors) != 1 || !p.Contributors[0].IsOrganization() {
		t.Errorf("contributors = %+v", p.Contributors)
	}
}

func TestFetchArxiv(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Is All You Need</title>
    <published>2017-06-12T00:00:00Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
</feed>`))
	}))
	defer ts.Close()
	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	c := newTestClient(t, nil)
	p, err := c.FetchByIdentifier(context.Background(), identifier.Normalize("arXiv:1706.03762v5"), 0)
	if err != nil {
		t.Fatalf("FetchByIdentifier: %v", err)
	}
	if p.Title != "Attention Is All You Need" {
		t.Errorf("title = %q", p.Title)
	}
	if len(p.Contributors) != 2 || p.Contributors[0].Family != "Vaswani" || p.Contributors[0].Given != "Ashish" {
		t.Errorf("contributors = %+v", p.Contributors)
	}
	if p.Container != "arXiv" {
		t.Errorf("container = %q", p.Container)
	}
	if len(p.Identifiers) != 1 || p.Identifiers[0].Canonical != "preprint:1706.03762" {
		t.Errorf("identifiers = %+v (version suffix should be stripped)", p.Identifiers)
	}
}

func TestFetchByIdentifierRejectsUnfetchableKinds(t *testing.T) {
	c := newTestClient(t, nil)
	for _, raw := range []string{"https://example.org/post", "free text"} {
		_, err := c.FetchByIdentifier(context.Background(), identifier.Normalize(raw), 0)
		lerr, ok := err.(*LookupError)
		if !ok || lerr.Kind != ErrPermanent {
			t.Errorf("FetchByIdentifier(%q) err = %v, want permanent LookupError", raw, err)
		}
	}
}

func TestFetchByQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.bibliographic"); got != "craft of use" {
			t.Errorf("query.bibliographic = %q", got)
		}
		w.Write([]byte(`{"message":{"items":[{
			"DOI":"10.4324/9781315647371",
			"title":["The Craft of Use: Post-Growth Fashion"],
			"author":[{"given":"Kate","family":"Fletcher"}]
		}]}}`))
	}))
	defer ts.Close()
	oldBase := crossrefWorksBase
	crossrefWorksBase = ts.URL
	defer func() { crossrefWorksBase = oldBase }()

	c := newTestClient(t, nil)
	p, err := c.FetchByQuery(context.Background(), "craft of use", 0)
	if err != nil {
		t.Fatalf("FetchByQuery: %v", err)
	}
	if p.Title != "The Craft of Use: Post-Growth Fashion" {
		t.Errorf("title = %q", p.Title)
	}
}
