package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// GCC member states share one rule tree with a region level.
var gccCountries = map[string]string{
	"ae":  "ae",
	"uae": "ae",
	"sa":  "sa",
	"kw":  "kw",
	"qa":  "qa",
	"bh":  "bh",
	"om":  "om",
}

// Repository loads rule packs lazily from a read-only directory tree and
// caches them until the underlying files change. Safe for concurrent use.
type Repository struct {
	root string
	log  logger.Logger

	mu    sync.RWMutex
	cache map[string][]models.Rule

	watcher *watcher
}

// NewRepository creates a repository over the given rule pack root.
func NewRepository(root string) *Repository {
	return &Repository{
		root:  root,
		log:   logger.GetLogger().WithField("component", "rules"),
		cache: make(map[string][]models.Rule),
	}
}

// Get returns the ordered rule list for (country, region, category):
// the country's common rules first, then the category rules. Missing
// directories yield an empty pack, not an error.
func (r *Repository) Get(country, region, category string) []models.Rule {
	key := cacheKey(country, region, category)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	loaded := r.load(country, region, category)

	r.mu.Lock()
	r.cache[key] = loaded
	r.mu.Unlock()
	return loaded
}

// Invalidate drops every cached pack; the next Get reloads from disk.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string][]models.Rule)
	r.mu.Unlock()
}

func (r *Repository) load(country, region, category string) []models.Rule {
	base := r.baseDir(country, region)

	var rules []models.Rule
	rules = append(rules, r.loadDir(filepath.Join(base, "common"))...)
	if category != "" {
		rules = append(rules, r.loadDir(filepath.Join(base, strings.ToLower(category)))...)
	}

	r.log.Debug("Loaded rule pack", logger.Fields{
		"country":  country,
		"region":   region,
		"category": category,
		"rules":    len(rules),
	})
	return rules
}

func (r *Repository) loadDir(dir string) []models.Rule {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	rel, err := filepath.Rel(r.root, dir)
	if err != nil {
		rel = dir
	}

	var rules []models.Rule
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("Failed to read rule file", logger.Fields{"path": path, "error": err.Error()})
			continue
		}
		var fileRules []models.Rule
		if err := json.Unmarshal(data, &fileRules); err != nil {
			r.log.Warn("Skipping malformed rule file", logger.Fields{"path": path, "error": err.Error()})
			continue
		}
		for i := range fileRules {
			if fileRules[i].JurisdictionPath == "" {
				fileRules[i].JurisdictionPath = rel
			}
		}
		rules = append(rules, fileRules...)
	}
	return rules
}

// baseDir resolves the directory for a jurisdiction. GCC member states
// live under the shared gcc tree with a region level.
func (r *Repository) baseDir(country, region string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "gcc" {
		if region != "" {
			return filepath.Join(r.root, "gcc", strings.ToLower(region))
		}
		return filepath.Join(r.root, "gcc")
	}
	if rg, ok := gccCountries[c]; ok {
		return filepath.Join(r.root, "gcc", rg)
	}
	return filepath.Join(r.root, c)
}

func cacheKey(country, region, category string) string {
	return strings.ToLower(country) + "|" + strings.ToLower(region) + "|" + strings.ToLower(category)
}
