package daemon

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
)

// LastBuild is the health view of the most recent build.
type LastBuild struct {
	BuildID  string    `json:"build_id"`
	Trigger  string    `json:"trigger"`
	Outcome  string    `json:"outcome"`
	Finished time.Time `json:"finished"`
	Posts    int       `json:"posts"`
	Pages    int       `json:"pages"`
	Error    string    `json:"error,omitempty"`
}

// buildStatus tracks the last build and whether any build has succeeded.
type buildStatus struct {
	mu       sync.RWMutex
	last     *LastBuild
	goodOnce bool
	running  bool
}

func (s *buildStatus) start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

func (s *buildStatus) record(r *build.BuildReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if r == nil {
		return
	}
	lb := &LastBuild{
		BuildID:  r.BuildID,
		Trigger:  r.Trigger,
		Outcome:  string(r.Outcome),
		Finished: r.End,
		Posts:    r.Posts,
		Pages:    r.Pages,
	}
	if err != nil {
		lb.Error = err.Error()
	} else {
		s.goodOnce = true
	}
	s.last = lb
}

func (s *buildStatus) snapshot() (last *LastBuild, goodOnce, running bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last != nil {
		cp := *s.last
		last = &cp
	}
	return last, s.goodOnce, s.running
}
