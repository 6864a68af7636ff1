package config

import "time"

// Defaults mirror the original site's behaviour.
const (
	DefaultSiteName         = "Cute Finds"
	DefaultAuthor           = "blushify Team"
	DefaultPlaceholderImage = "https://via.placeholder.com/400x250"
	DefaultCSVPath          = "data/blogs.csv"
	DefaultOutputDir        = "out"
	DefaultStateDir         = ".blogbuilder"
	DefaultPostsPerPage     = 3
	DefaultHomeLatest       = 2
	DefaultRelated          = 2
	DefaultPreviewPort      = 3000
	DefaultDaemonPort       = 8080
	DefaultDebounce         = 300 * time.Millisecond
	DefaultInterval         = 15 * time.Minute
	DefaultNATSSubject      = "blogbuilder.builds"
)

func applyDefaults(c *Config) {
	s := &c.Site
	setString(&s.Name, DefaultSiteName)
	setString(&s.Title, "blushify - Top Kawaii & Girly Products for 2025")
	setString(&s.Description, "Discover the cutest kawaii accessories, pastel gifts, and girly tech gadgets.")
	setString(&s.Author, DefaultAuthor)
	setString(&s.HeroTitle, "Discover the Cutest Kawaii Products for 2025")
	setString(&s.HeroSubtitle, "Your ultimate guide to adorable girly must-haves and aesthetic room essentials")
	setString(&s.PlaceholderImage, DefaultPlaceholderImage)

	setString(&c.Content.CSVPath, DefaultCSVPath)
	if r := c.Content.Repository; r != nil {
		setString(&r.Branch, "main")
		if r.Auth == nil {
			r.Auth = &AuthConfig{Type: AuthTypeNone}
		}
		if r.Auth.Type == "" {
			r.Auth.Type = AuthTypeNone
		}
	}

	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
		c.Output.Clean = true
	}
	setString(&c.Output.StateDir, DefaultStateDir)
	if r := c.Content.Repository; r != nil {
		setString(&r.WorkspaceDir, c.Output.StateDir+"/repo")
	}

	setInt(&c.Pagination.PostsPerPage, DefaultPostsPerPage)
	setInt(&c.Pagination.HomeLatest, DefaultHomeLatest)
	setInt(&c.Pagination.Related, DefaultRelated)

	setString(&c.Legacy.Template, "public/blog-post-name.html")
	setString(&c.Legacy.OutputDir, "public/posts")
	setString(&c.Legacy.Manifest, "public/blogs.json")
	setString(&c.Legacy.LastRunFile, "lastRun.json")

	setInt(&c.Preview.Port, DefaultPreviewPort)
	if c.Preview.Debounce == 0 {
		c.Preview.Debounce = DefaultDebounce
	}

	setInt(&c.Daemon.HTTP.Port, DefaultDaemonPort)
	if c.Daemon.HTTP.ShutdownTimeout == 0 {
		c.Daemon.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Daemon.Schedule.Interval == 0 && c.Daemon.Schedule.Cron == "" {
		c.Daemon.Schedule.Interval = DefaultInterval
	}
	setString(&c.Daemon.Storage.EventsDB, c.Output.StateDir+"/events.db")

	setString(&c.Monitoring.Metrics.Path, "/metrics")
	setString(&c.Monitoring.Health.Path, "/health")

	if n := c.Notify.NATS; n != nil {
		setString(&n.Subject, DefaultNATSSubject)
	}

	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// Enabled resolves an optional toggle that defaults to true.
func Enabled(b *bool) bool { return b == nil || *b }
