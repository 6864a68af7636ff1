package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func init() {
	// Report yaml keys rather than Go field names.
	validation.ErrorTag = "yaml"
}

// Validate checks the whole configuration and returns a config-category error.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Site),
		validation.Field(&c.Content),
		validation.Field(&c.Output),
		validation.Field(&c.Pagination),
		validation.Field(&c.Preview),
		validation.Field(&c.Daemon),
		validation.Field(&c.Notify),
	)
	if err != nil {
		return ferrors.ConfigError("invalid configuration").WithCause(err).Build()
	}
	return nil
}

func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.BaseURL, validation.By(absoluteURL)),
	)
}

func (c ContentConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CSVPath, validation.Required),
		validation.Field(&c.Repository),
	)
}

func (r *RepositoryConfig) Validate() error {
	if r == nil {
		return nil
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required),
		validation.Field(&r.Auth),
	)
}

func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Directory, validation.Required, validation.By(notRoot)),
		validation.Field(&o.StateDir, validation.Required),
	)
}

func (p PaginationConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PostsPerPage, validation.Min(1)),
		validation.Field(&p.HomeLatest, validation.Min(0)),
		validation.Field(&p.Related, validation.Min(0)),
	)
}

func (p PreviewConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Port, validation.Min(1), validation.Max(65535)),
		validation.Field(&p.Debounce, validation.Min(time.Duration(0))),
	)
}

func (d DaemonConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.HTTP),
		validation.Field(&d.Schedule),
	)
}

func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Port, validation.Min(1), validation.Max(65535)),
	)
}

func (s ScheduleConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Interval, validation.When(s.Cron == "", validation.Min(time.Second))),
		validation.Field(&s.Cron, validation.By(cronExpression)),
	)
}

func (n NotifyConfig) Validate() error {
	return validation.ValidateStruct(&n, validation.Field(&n.NATS))
}

func (n *NATSConfig) Validate() error {
	if n == nil {
		return nil
	}
	return validation.ValidateStruct(n,
		validation.Field(&n.URL, validation.Required),
		validation.Field(&n.Subject, validation.Required),
	)
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return validation.NewError("config.url", "must be an absolute URL")
	}
	return nil
}

func notRoot(v any) error {
	s, _ := v.(string)
	if t := strings.TrimSpace(s); t == "/" || t == "." {
		return validation.NewError("config.output.root", "refusing to use this directory as output")
	}
	return nil
}

// cronExpression accepts standard five field expressions and the six field
// form with seconds. gocron performs the full parse when the job is created.
func cronExpression(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if n := len(strings.Fields(s)); n != 5 && n != 6 {
		return validation.NewError("config.cron", fmt.Sprintf("expected 5 or 6 fields, got %d", n))
	}
	return nil
}
