package config

const (
	defaultCatalogPath         = "src/data/episodes.json"
	defaultStateDir            = "~/.local/share/rewatch"
	defaultFeedURL             = "https://feeds.megaphone.fm/the-rewatchables"
	defaultShowPrefix          = "The Rewatchables"
	defaultHost                = "Bill Simmons"
	defaultSpotifyURL          = "https://open.spotify.com/show/1lUPomulZRPquVAOOd56EW"
	defaultFeedTimeout         = 30
	defaultSearchGraphQLURL    = "https://apis.justwatch.com/graphql"
	defaultSearchCountry       = "AU"
	defaultSearchResultLimit   = 5
	defaultSearchTimeout       = 15
	defaultSearchRetryAttempts = 3
	defaultSearchRetryBackoff  = 2
	defaultSearchCacheSize     = 512
	defaultSearchCacheTTL      = 60
	defaultTMDBLanguage        = "en-US"
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultAppleSearchURL      = "https://itunes.apple.com/search"
	defaultAppleStore          = "au"
	defaultAppleResultLimit    = 5
	defaultWorkerConcurrency   = 10
	defaultWorkerBatchSize     = 20
	defaultWorkerBatchPauseMS  = 1000
	defaultAuditStaleDays      = 30
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

var defaultKnownHosts = []string{
	"Bill Simmons", "Chris Ryan", "Sean Fennessey", "Van Lathan",
	"Mallory Rubin", "Amanda Dobbins", "Wesley Morris", "Ryen Russillo",
	"Shea Serrano", "Jason Concepcion", "Andy Greenwald", "Juliet Litman",
	"Craig Horlbeck", "Danny Heifetz", "Danny Kelly", "Kyle Brandt",
	"Cousin Sal",
}

var defaultSkipPatterns = []string{
	`category selection`,
	`selection show`,
	`new categories`,
	`announcement`,
	`preview`,
	`mailbag`,
	`live from`,
	`bonus:`,
	`^intro:`,
	`^welcome to`,
	`the re-`,
	`the three-`,
	`\d+th anniversary`,
	`live$`,
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogPath: defaultCatalogPath,
			StateDir:    defaultStateDir,
		},
		Feed: Feed{
			URL:            defaultFeedURL,
			ShowPrefix:     defaultShowPrefix,
			DefaultHost:    defaultHost,
			KnownHosts:     append([]string(nil), defaultKnownHosts...),
			SkipPatterns:   append([]string(nil), defaultSkipPatterns...),
			SpotifyURL:     defaultSpotifyURL,
			TimeoutSeconds: defaultFeedTimeout,
		},
		Search: Search{
			GraphQLURL:          defaultSearchGraphQLURL,
			Country:             defaultSearchCountry,
			ResultLimit:         defaultSearchResultLimit,
			TimeoutSeconds:      defaultSearchTimeout,
			RetryAttempts:       defaultSearchRetryAttempts,
			RetryBackoffSeconds: defaultSearchRetryBackoff,
			CacheSize:           defaultSearchCacheSize,
			CacheTTLMinutes:     defaultSearchCacheTTL,
		},
		TMDB: TMDB{
			Language: defaultTMDBLanguage,
			BaseURL:  defaultTMDBBaseURL,
		},
		ApplePodcasts: ApplePodcasts{
			Enabled:     true,
			SearchURL:   defaultAppleSearchURL,
			Store:       defaultAppleStore,
			ResultLimit: defaultAppleResultLimit,
		},
		Workers: Workers{
			Concurrency:  defaultWorkerConcurrency,
			BatchSize:    defaultWorkerBatchSize,
			BatchPauseMS: defaultWorkerBatchPauseMS,
		},
		Audit: Audit{
			StaleDays: defaultAuditStaleDays,
		},
		Dedup: Dedup{
			MatchIDs: true,
		},
		Catalog: Catalog{
			Backup: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			EpisodesAdded:  true,
			Refresh:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
