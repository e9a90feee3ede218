package aggregate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fortega-m/vigia/internal/feed"
	"github.com/fortega-m/vigia/internal/sources"
)

func rssDoc(items ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test</title>`)
	for i, it := range items {
		fmt.Fprintf(&b, "<item><title>%s</title><link>https://example.com/%d</link><description>%s</description></item>", it[0], i, it[1])
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func serveRSS(t *testing.T, doc string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testCatalog builds a single-category catalog pointing at the given
// name/URL pairs, preserving order.
func testCatalog(t *testing.T, pairs ...[2]string) sources.Catalog {
	t.Helper()
	var b strings.Builder
	b.WriteString("- category: nacional\n  sources:\n")
	for _, p := range pairs {
		fmt.Fprintf(&b, "    - name: %s\n      url: %s\n", p[0], p[1])
	}
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := sources.Load(path)
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return cat
}

func TestAggregateEmptyKeyword(t *testing.T) {
	agg := New(feed.New(0), nil)
	for _, kw := range []string{"", "   ", "\t\n"} {
		if _, err := agg.Aggregate(context.Background(), kw, Options{}); !errors.Is(err, ErrEmptyKeyword) {
			t.Errorf("Aggregate(%q) error = %v, want ErrEmptyKeyword", kw, err)
		}
	}
}

func TestAggregateRanksAcrossSources(t *testing.T) {
	// A has two entries with one mention each, B one entry with two
	// mentions, C nothing relevant. The double mention must rank first.
	srvA := serveRSS(t, rssDoc(
		[2]string{"Sequía afecta al agro", "Panorama complejo en el campo"},
		[2]string{"Embalses en mínimos", "Expertos culpan a la sequía"},
	))
	srvB := serveRSS(t, rssDoc(
		[2]string{"Sequía histórica", "La sequía no da tregua"},
	))
	srvC := serveRSS(t, rssDoc(
		[2]string{"Lluvias en el sur", "Pronóstico de precipitaciones"},
	))

	cat := testCatalog(t,
		[2]string{"Fuente A", srvA.URL},
		[2]string{"Fuente B", srvB.URL},
		[2]string{"Fuente C", srvC.URL},
	)

	got, err := New(feed.New(0), nil).Aggregate(context.Background(), "sequía", Options{Catalog: cat})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d: %+v", len(got), got)
	}
	if got[0].Source != "Fuente B" || got[0].RelevanceScore != 2 {
		t.Errorf("first should be Fuente B with score 2, got %s score %d", got[0].Source, got[0].RelevanceScore)
	}
	if got[1].Title != "Sequía afecta al agro" || got[2].Title != "Embalses en mínimos" {
		t.Errorf("equal scores must keep source order, got [%s, %s]", got[1].Title, got[2].Title)
	}
	for _, a := range got {
		if a.RelevanceScore != a.KeywordMatchCount {
			t.Errorf("relevance %d diverges from match count %d", a.RelevanceScore, a.KeywordMatchCount)
		}
		if a.Category != "nacional" {
			t.Errorf("category lost: %+v", a)
		}
		if a.FetchedAt.IsZero() {
			t.Error("FetchedAt not stamped")
		}
	}
}

func TestAggregateDedupKeepsFirst(t *testing.T) {
	srvA := serveRSS(t, rssDoc([2]string{"Sequía en Chile", "cobertura original de la sequía"}))
	// Same headline with different case and spacing, from a later source.
	srvB := serveRSS(t, rssDoc([2]string{"SEQUÍA  en  chile", "republicación"}))

	cat := testCatalog(t,
		[2]string{"Primera", srvA.URL},
		[2]string{"Segunda", srvB.URL},
	)

	got, err := New(feed.New(0), nil).Aggregate(context.Background(), "sequía", Options{Catalog: cat})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article after dedup, got %d", len(got))
	}
	if got[0].Source != "Primera" {
		t.Errorf("dedup must keep the first occurrence, kept %s", got[0].Source)
	}
}

func TestAggregateAbsorbsSourceFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()
	healthy := serveRSS(t, rssDoc([2]string{"Sequía persiste", "sin cambios"}))

	cat := testCatalog(t,
		[2]string{"Caída", broken.URL},
		[2]string{"Sana", healthy.URL},
	)

	var reported []string
	report := func(format string, args ...any) {
		reported = append(reported, fmt.Sprintf(format, args...))
	}

	got, err := New(feed.New(0), report).Aggregate(context.Background(), "sequía", Options{Catalog: cat})
	if err != nil {
		t.Fatalf("one broken source must not abort the run: %v", err)
	}
	if len(got) != 1 || got[0].Source != "Sana" {
		t.Errorf("expected the healthy source's article, got %+v", got)
	}
	if len(reported) != 1 || !strings.Contains(reported[0], "Caída") {
		t.Errorf("failure should be reported with its source label, got %v", reported)
	}
}

func TestAggregateTrustsSearchEntries(t *testing.T) {
	// The search engine already filtered by keyword, so its entry survives
	// the merge with count 1 even though the literal keyword appears nowhere
	// in its text.
	searchSrv := serveRSS(t, rssDoc(
		[2]string{"Titular sin la palabra buscada", "texto sin coincidencias"},
	))
	catalogSrv := serveRSS(t, rssDoc(
		[2]string{"Sequía regional", "la sequía persiste"},
	))
	cat := testCatalog(t, [2]string{"Fuente", catalogSrv.URL})

	var gotKeyword string
	got, err := New(feed.New(0), nil).Aggregate(context.Background(), "sequía", Options{
		Catalog:   cat,
		UseGoogle: true,
		GoogleURL: func(keyword string) string {
			gotKeyword = keyword
			return searchSrv.URL
		},
	})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if gotKeyword != "sequía" {
		t.Errorf("URL builder received keyword %q", gotKeyword)
	}
	if len(got) != 2 {
		t.Fatalf("expected catalog + search articles, got %d: %+v", len(got), got)
	}
	if got[0].Source != "Fuente" || got[0].KeywordMatchCount != 2 {
		t.Errorf("double mention should rank first, got %s count %d", got[0].Source, got[0].KeywordMatchCount)
	}
	search := got[1]
	if search.Source != sources.GoogleNewsLabel {
		t.Errorf("search entry source = %q, want %q", search.Source, sources.GoogleNewsLabel)
	}
	if search.KeywordMatchCount != 1 || search.RelevanceScore != 1 {
		t.Errorf("search entries are trusted with count 1, got count %d score %d", search.KeywordMatchCount, search.RelevanceScore)
	}
	if search.Keyword != "sequía" {
		t.Errorf("search entry keyword = %q", search.Keyword)
	}
}

func TestAggregateSearchCapAndDedupPrecedence(t *testing.T) {
	searchSrv := serveRSS(t, rssDoc(
		[2]string{"Sequía en Chile", "cobertura del buscador"},
		[2]string{"Segunda nota del buscador", ""},
		[2]string{"Tercera nota del buscador", ""},
	))
	// The catalog repeats the first search headline; search engines merge
	// first, so their copy survives dedup.
	catalogSrv := serveRSS(t, rssDoc([2]string{"Sequía en Chile", "republicación"}))
	cat := testCatalog(t, [2]string{"Fuente", catalogSrv.URL})

	got, err := New(feed.New(0), nil).Aggregate(context.Background(), "sequía", Options{
		Catalog: cat,
		UseBing: true,
		BingCap: 2,
		BingURL: func(string) string { return searchSrv.URL },
	})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cap 2 plus a deduplicated catalog entry should leave 2 articles, got %d: %+v", len(got), got)
	}
	for _, a := range got {
		if a.Source != sources.BingNewsLabel {
			t.Errorf("expected only search-mode articles to survive, got %+v", a)
		}
	}
}

func TestAggregateMinMatches(t *testing.T) {
	srv := serveRSS(t, rssDoc(
		[2]string{"Sequía histórica", "La sequía se agrava por la sequía"}, // 3 mentions
		[2]string{"Sequía puntual", "sin más menciones"},                   // 1 mention
	))
	cat := testCatalog(t, [2]string{"Fuente", srv.URL})

	got, err := New(feed.New(0), nil).Aggregate(context.Background(), "sequía", Options{Catalog: cat, MinMatches: 2})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(got) != 1 || got[0].KeywordMatchCount != 3 {
		t.Errorf("min-matches filter failed: %+v", got)
	}
}

func TestAggregateNoResults(t *testing.T) {
	srv := serveRSS(t, rssDoc([2]string{"Lluvias", "nada relevante"}))
	cat := testCatalog(t, [2]string{"Fuente", srv.URL})

	got, err := New(feed.New(0), nil).Aggregate(context.Background(), "sequía", Options{Catalog: cat})
	if err != nil {
		t.Fatalf("empty result is not an error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil collection, got %+v", got)
	}
}

func TestBuildJobsOrder(t *testing.T) {
	cat := testCatalog(t,
		[2]string{"Fuente A", "https://a.example.com/feed"},
		[2]string{"Fuente B", "https://b.example.com/feed"},
	)
	jobs := buildJobs("sequía", Options{Catalog: cat, UseGoogle: true, UseBing: true})
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}
	if jobs[0].label != sources.GoogleNewsLabel || !jobs[0].search || jobs[0].cap != DefaultGoogleCap {
		t.Errorf("first job should be Google with default cap: %+v", jobs[0])
	}
	if jobs[1].label != sources.BingNewsLabel || !jobs[1].search || jobs[1].cap != DefaultBingCap {
		t.Errorf("second job should be Bing with default cap: %+v", jobs[1])
	}
	if jobs[2].label != "Fuente A" || jobs[3].label != "Fuente B" {
		t.Errorf("catalog sources should follow in order: %+v", jobs[2:])
	}
}

func TestBuildJobsCustomCaps(t *testing.T) {
	jobs := buildJobs("cobre", Options{UseGoogle: true, GoogleCap: 7})
	if len(jobs) != 1 || jobs[0].cap != 7 {
		t.Errorf("custom cap not honored: %+v", jobs)
	}
}
