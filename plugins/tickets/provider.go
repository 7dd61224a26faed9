package tickets

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"github.com/weaselp/ticketbot/internal"
)

// ErrTicketNotFound is returned by Provider.Lookup when the tracker has no
// ticket behind a matched reference.
var ErrTicketNotFound = errors.New("ticket not found")

// defaultTrigger is the trigger shared by all "default" channel bindings.
//
// The shipped trigger patterns use \b and \B instead of the lookaround
// assertions the equivalent PCRE patterns would use; RE2 has no lookarounds,
// and the boundary classes accept and reject the same references without
// consuming the surrounding characters.
var defaultTrigger = regexp.MustCompile(`\B#([0-9]{4,})\b`)

// A Provider resolves ticket references of one tracker into printable
// one-line summaries.
type Provider interface {
	// Name returns the unique configured name of this provider.
	Name() string

	// Matches extracts all ticket references this provider is responsible
	// for from a message sent to target.
	Matches(target, text string) []string

	// Handles reports whether this provider has a channel binding covering
	// target.
	Handles(target string) bool

	// Lookup resolves a single ticket reference into a display line.
	Lookup(ticket string) (string, error)
}

// channelBinding attaches a provider to a channel pattern, optionally with a
// dedicated trigger and/or the shared default trigger.
type channelBinding struct {
	name       string
	pattern    glob.Glob
	trigger    *regexp.Regexp
	useDefault bool
}

type baseProvider struct {
	name    string
	prefix  string
	postfix string
	fixup   Fixup
	trigger *regexp.Regexp

	channels []*channelBinding

	logger *logrus.Entry
}

func newBaseProvider(name, prefix, postfix, trigger string, fixup Fixup, logger *logrus.Entry) (baseProvider, error) {
	p := baseProvider{
		name:    name,
		prefix:  prefix,
		postfix: postfix,
		fixup:   fixup,
		logger:  logger.WithField("provider", name),
	}

	// An explicit trigger wins. Otherwise a prefix implies a trigger of the
	// form "tor#1234".
	switch {
	case trigger != "":
		re, err := regexp.Compile(trigger)
		if err != nil {
			return p, fmt.Errorf("provider %q: bad trigger: %s", name, err)
		}

		p.trigger = re
	case prefix != "":
		p.trigger = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(prefix) + `#([0-9]{2,})\b`)
	}

	return p, nil
}

func (p *baseProvider) Name() string {
	return p.name
}

// AddChannel registers a trigger for this provider on a channel pattern.
// Re-adding a pattern replaces the previous binding.
func (p *baseProvider) AddChannel(name, trigger string, useDefault bool) error {
	g, err := glob.Compile(name)
	if err != nil {
		return fmt.Errorf("provider %q: bad channel pattern %q: %s", p.name, name, err)
	}

	b := &channelBinding{
		name:       name,
		pattern:    g,
		useDefault: useDefault,
	}

	if trigger != "" {
		b.trigger, err = regexp.Compile(trigger)
		if err != nil {
			return fmt.Errorf("provider %q: bad trigger for channel %q: %s", p.name, name, err)
		}
	}

	for i, existing := range p.channels {
		if existing.name == name {
			p.logger.Warnf("Re-adding channel %q", name)
			p.channels[i] = b

			return nil
		}
	}

	p.channels = append(p.channels, b)

	return nil
}

func (p *baseProvider) Handles(target string) bool {
	for _, ch := range p.channels {
		if ch.pattern.Match(target) {
			return true
		}
	}

	return false
}

func (p *baseProvider) Matches(target, text string) []string {
	var out []string

	// The provider-level trigger applies everywhere the bot listens.
	if p.trigger != nil {
		out = append(out, findReferences(p.trigger, text)...)
	}

	for _, ch := range p.channels {
		if !ch.pattern.Match(target) {
			continue
		}

		if ch.useDefault {
			out = append(out, findReferences(defaultTrigger, text)...)
		}

		if ch.trigger != nil {
			out = append(out, findReferences(ch.trigger, text)...)
		}
	}

	return out
}

// render runs the display pipeline: whitespace cleanup, fixup, optional
// status tag, prefix and postfix decoration.
func (p *baseProvider) render(ticket, rawTitle, status string) string {
	title := internal.CollapseSpace(rawTitle)

	if p.fixup != nil {
		title = p.fixup(ticket, title)
	}

	if status != "" {
		title = title + " [" + status + "]"
	}

	if p.prefix != "" {
		title = p.prefix + title
	}

	if p.postfix != "" {
		title = title + fmt.Sprintf(p.postfix, ticket)
	}

	return title
}

// findReferences returns the first capture group of every match, or the full
// match for group-less patterns.
func findReferences(re *regexp.Regexp, text string) []string {
	var out []string

	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}

	return out
}

// repeatLimiter suppresses repeated announcements of the same ticket in the
// same channel inside a time window. Announcements happen on background
// goroutines, so all access is locked.
type repeatLimiter struct {
	window   time.Duration
	mu       sync.Mutex
	lastSent map[string]time.Time
}

func newRepeatLimiter(window time.Duration) *repeatLimiter {
	return &repeatLimiter{
		window:   window,
		lastSent: make(map[string]time.Time),
	}
}

func (l *repeatLimiter) allow(provider, target, ticket string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.lastSent[provider+"\x00"+target+"\x00"+ticket]

	return !ok || time.Since(last) >= l.window
}

// mark records a successful announcement. It is separate from allow so that
// failed lookups do not suppress a later retry.
func (l *repeatLimiter) mark(provider, target, ticket string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastSent[provider+"\x00"+target+"\x00"+ticket] = time.Now()
}
