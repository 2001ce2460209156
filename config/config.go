package config

import (
	"path/filepath"
	"time"
)

// Config holds every setting of a migration run. Paths are relative to Root
// unless absolute.
type Config struct {
	Root           string `yaml:"root"`
	SiteDir        string `yaml:"site_dir"`
	DataDir        string `yaml:"data_dir"`
	AdminConfig    string `yaml:"admin_config"`
	BaseURL        string `yaml:"base_url"`
	SearchIndexURL string `yaml:"search_index_url"`
	ContentPrefix  string `yaml:"content_prefix"`
	SiteName       string `yaml:"site_name"`
	CacheDSN       string `yaml:"cache_dsn"`

	Disclaimer        string   `yaml:"disclaimer"`
	Boilerplate       []string `yaml:"boilerplate"`
	PlaceholderImages []string `yaml:"placeholder_images"`
	ScholarlyHosts    []string `yaml:"scholarly_hosts"`
	ProfileHosts      []string `yaml:"profile_hosts"`
	// Scripts of the site builder runtime, matched by src or inline text.
	RuntimeScriptSources []string `yaml:"runtime_script_sources"`
	RuntimeScriptMarkers []string `yaml:"runtime_script_markers"`

	AllowLists AllowLists        `yaml:"allow_lists"`
	Positions  map[string]string `yaml:"positions"`

	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	LiveFetch    *bool         `yaml:"live_fetch"`
}

// AllowLists are the curated slug tables that short-circuit classification.
type AllowLists struct {
	People []string `yaml:"people"`
	News   []string `yaml:"news"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	live := true
	return &Config{
		Root:                 ".",
		SiteDir:              "site",
		DataDir:              "data",
		AdminConfig:          filepath.Join("site", "admin", "config.yml"),
		BaseURL:              "https://mongooseproject.org",
		SearchIndexURL:       "https://framerusercontent.com/sites/4nPRg3hC3Keb52fPYFU5qT/searchIndex-bqgNGwXnRph4.json",
		ContentPrefix:        "/pubs-news-ppl/",
		SiteName:             "Banded Mongoose",
		CacheDSN:             filepath.Join("data", "fetch-cache.db"),
		Disclaimer:           Disclaimer,
		Boilerplate:          append([]string(nil), BoilerplatePhrases...),
		PlaceholderImages:    []string{"wjm8sH3lFWh090l9FoPGRqKKv8"},
		ScholarlyHosts:       append([]string(nil), ScholarlyHosts...),
		ProfileHosts:         append([]string(nil), ProfileHosts...),
		RuntimeScriptSources: []string{"framer"},
		RuntimeScriptMarkers: []string{"__framer", "Identifier"},
		AllowLists: AllowLists{
			People: append([]string(nil), PeopleSlugs...),
			News:   append([]string(nil), NewsSlugs...),
		},
		Positions:    copyPositions(SlugPositions),
		FetchTimeout: 10 * time.Second,
		LiveFetch:    &live,
	}
}

// Merge overlays the non-empty values of other onto c. Lists and tables
// replace rather than extend.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	setString(&c.Root, other.Root)
	setString(&c.SiteDir, other.SiteDir)
	setString(&c.DataDir, other.DataDir)
	setString(&c.AdminConfig, other.AdminConfig)
	setString(&c.BaseURL, other.BaseURL)
	setString(&c.SearchIndexURL, other.SearchIndexURL)
	setString(&c.ContentPrefix, other.ContentPrefix)
	setString(&c.SiteName, other.SiteName)
	setString(&c.CacheDSN, other.CacheDSN)
	setString(&c.Disclaimer, other.Disclaimer)

	if len(other.Boilerplate) > 0 {
		c.Boilerplate = other.Boilerplate
	}
	if len(other.PlaceholderImages) > 0 {
		c.PlaceholderImages = other.PlaceholderImages
	}
	if len(other.ScholarlyHosts) > 0 {
		c.ScholarlyHosts = other.ScholarlyHosts
	}
	if len(other.ProfileHosts) > 0 {
		c.ProfileHosts = other.ProfileHosts
	}
	if len(other.RuntimeScriptSources) > 0 {
		c.RuntimeScriptSources = other.RuntimeScriptSources
	}
	if len(other.RuntimeScriptMarkers) > 0 {
		c.RuntimeScriptMarkers = other.RuntimeScriptMarkers
	}
	if len(other.AllowLists.People) > 0 {
		c.AllowLists.People = other.AllowLists.People
	}
	if len(other.AllowLists.News) > 0 {
		c.AllowLists.News = other.AllowLists.News
	}
	if len(other.Positions) > 0 {
		c.Positions = other.Positions
	}
	if other.FetchTimeout > 0 {
		c.FetchTimeout = other.FetchTimeout
	}
	if other.LiveFetch != nil {
		c.LiveFetch = other.LiveFetch
	}
}

// Path resolves a configured path against Root.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// LiveFetchEnabled reports whether the extractor may fetch live pages as a
// last resort.
func (c *Config) LiveFetchEnabled() bool {
	return c.LiveFetch == nil || *c.LiveFetch
}

// PageDir is the directory holding one static HTML shell per record.
func (c *Config) PageDir() string {
	return filepath.Join(c.Path(c.SiteDir), "pubs-news-ppl")
}

// SearchIndexPath is the local snapshot of the search index.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Path(c.DataDir), "searchIndex.json")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func copyPositions(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
