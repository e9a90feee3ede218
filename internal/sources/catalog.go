// Package sources holds the static registry of news sources the monitor
// polls: fixed-URL publisher RSS feeds grouped by category, plus the two
// search-style endpoints (Google News, Bing News) that take the keyword
// itself as a query parameter.
package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fortega-m/vigia/pkg/models"
)

// Source categories, in catalog iteration order. This order is part of the
// aggregation contract: it decides which duplicate survives dedup.
const (
	CategoryNational = "nacional"
	CategoryEconomy  = "economia"
	CategoryRegional = "regional"
	CategoryGlobal   = "global"
)

// Group is one category together with its configured feeds.
type Group struct {
	Category string                    `yaml:"category"`
	Sources  []models.SourceDefinition `yaml:"sources"`
}

// Catalog is an ordered set of source groups. Immutable once built.
type Catalog struct {
	groups []Group
}

// Default returns the built-in catalog of Chilean and international feeds.
func Default() Catalog {
	return Catalog{groups: []Group{
		{Category: CategoryNational, Sources: []models.SourceDefinition{
			{Name: "Emol", URL: "https://www.emol.com/rss/rss.asp"},
			{Name: "BioBioChile", URL: "https://www.biobiochile.cl/lista/rss"},
			{Name: "La Tercera", URL: "https://www.latercera.com/arc/outboundfeeds/rss/"},
			{Name: "T13", URL: "https://www.t13.cl/rss/rss.xml"},
			{Name: "Mega", URL: "https://www.meganoticias.cl/rss/portada.xml"},
			{Name: "CNN Chile", URL: "https://www.cnnchile.com/feed/"},
			{Name: "La Nación", URL: "https://www.lanacion.cl/feed/"},
			{Name: "El Mostrador", URL: "https://www.elmostrador.cl/noticias/feed/"},
			{Name: "CIPER Chile", URL: "https://www.ciperchile.cl/feed/"},
			{Name: "El Desconcierto", URL: "https://www.eldesconcierto.cl/feed/"},
		}},
		{Category: CategoryEconomy, Sources: []models.SourceDefinition{
			{Name: "Diario Financiero", URL: "https://www.df.cl/noticias/site/list/port/rss"},
			{Name: "Pulso", URL: "https://www.pulso.cl/feed/"},
		}},
		{Category: CategoryRegional, Sources: []models.SourceDefinition{
			{Name: "El Rancagüino", URL: "https://www.elrancaguino.cl/feed"},
			{Name: "La Discusión", URL: "https://www.ladiscusion.cl/feed"},
			{Name: "La Estrella Valpo", URL: "https://www.estrellavalpo.cl/feed"},
			{Name: "El Austral", URL: "https://www.australvaldivia.cl/feed"},
			{Name: "Diario Atacama", URL: "https://www.diarioatacama.cl/feed"},
			{Name: "El Clarín", URL: "https://www.elclarin.cl/feed"},
		}},
		{Category: CategoryGlobal, Sources: []models.SourceDefinition{
			{Name: "BBC Mundo", URL: "https://feeds.bbci.co.uk/mundo/rss.xml"},
			{Name: "CNN Español", URL: "http://rss.cnn.com/rss/cnn_latest.rss"},
			{Name: "Reuters", URL: "https://www.reutersagency.com/feed/"},
			{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
		}},
	}}
}

// Load reads a catalog from a YAML file. The file is an ordered list of
// category groups, so users control dedup precedence the same way the
// built-in catalog does.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var groups []Group
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for _, g := range groups {
		if g.Category == "" {
			return Catalog{}, fmt.Errorf("catalog %s: group without category", path)
		}
		for _, s := range g.Sources {
			if s.Name == "" || s.URL == "" {
				return Catalog{}, fmt.Errorf("catalog %s: source in %q missing name or url", path, g.Category)
			}
		}
	}
	return Catalog{groups: groups}, nil
}

// Groups returns the ordered category groups.
func (c Catalog) Groups() []Group { return c.groups }

// Categories returns the category names in catalog order.
func (c Catalog) Categories() []string {
	out := make([]string, 0, len(c.groups))
	for _, g := range c.groups {
		out = append(out, g.Category)
	}
	return out
}

// Filter returns a catalog containing only the requested categories,
// preserving catalog order. An empty filter keeps everything.
func (c Catalog) Filter(categories []string) Catalog {
	if len(categories) == 0 {
		return c
	}
	want := make(map[string]bool, len(categories))
	for _, cat := range categories {
		want[cat] = true
	}
	var groups []Group
	for _, g := range c.groups {
		if want[g.Category] {
			groups = append(groups, g)
		}
	}
	return Catalog{groups: groups}
}

// Len returns the total number of configured sources.
func (c Catalog) Len() int {
	n := 0
	for _, g := range c.groups {
		n += len(g.Sources)
	}
	return n
}
