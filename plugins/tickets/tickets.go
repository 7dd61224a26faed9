package tickets

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	ticketbot "github.com/weaselp/ticketbot"
	"github.com/weaselp/ticketbot/internal"
)

func init() {
	ticketbot.RegisterPlugin("tickets", newTicketsPlugin)
}

var providerTypes = []string{"html", "gitlab", "proposal", "rt"}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error

	d.Duration, err = time.ParseDuration(string(text))

	return err
}

type channelConfig struct {
	Name    string
	Trigger string
	Default bool
}

type providerConfig struct {
	Name     string
	Type     string
	URL      string
	Prefix   string
	Postfix  string
	Trigger  string
	Fixup    string
	Format   string
	Status   string
	RTConfig string

	Channel []channelConfig
}

type ticketsConfig struct {
	MinRepeat     duration
	DebugChannels []string

	Provider []providerConfig
}

// Plugin watches channel traffic for ticket references and announces a
// one-line summary for each, looked up through the matching provider.
type Plugin struct {
	providers []Provider
	limiter   *repeatLimiter
	debug     []glob.Glob
	history   *history
	logger    *logrus.Entry
}

func newTicketsPlugin(b *ticketbot.Bot) error {
	conf := &ticketsConfig{}

	err := b.Config("tickets", conf)
	if err != nil {
		return err
	}

	if conf.MinRepeat.Duration == 0 {
		conf.MinRepeat.Duration = 30 * time.Minute
	}

	if len(conf.DebugChannels) == 0 {
		conf.DebugChannels = []string{"#*-test"}
	}

	p := &Plugin{
		limiter: newRepeatLimiter(conf.MinRepeat.Duration),
		logger:  b.GetLogger().WithField("plugin", "tickets"),
	}

	for _, raw := range conf.DebugChannels {
		g, err := glob.Compile(raw)
		if err != nil {
			return fmt.Errorf("bad debug channel pattern %q: %s", raw, err)
		}

		p.debug = append(p.debug, g)
	}

	p.providers, err = buildProviders(conf.Provider, p.logger)
	if err != nil {
		return err
	}

	if db := b.DB(); db != nil {
		p.history, err = newHistory(db, p.logger)
		if err != nil {
			return err
		}

		b.CommandMux.Event("lastticket", p.lastTicketCallback, &ticketbot.HelpInfo{
			Usage:       "<ticket>",
			Description: "Reports when a ticket reference was last announced in this channel",
		})
	}

	b.CommandMux.Event("providers", p.providersCallback, &ticketbot.HelpInfo{
		Description: "Lists the ticket providers watching this channel",
	})

	b.BasicMux.Event("PRIVMSG", p.msgCallback)

	return nil
}

// buildProviders turns the config table into an ordered provider list.
// Dispatch order is configuration order.
func buildProviders(configs []providerConfig, logger *logrus.Entry) ([]Provider, error) {
	var (
		providers []Provider
		seen      []string
	)

	for _, pc := range configs {
		if pc.Name == "" {
			return nil, fmt.Errorf("provider with no name")
		}

		if internal.IsSliceContainsStr(seen, pc.Name) {
			return nil, fmt.Errorf("provider %q configured multiple times", pc.Name)
		}

		seen = append(seen, pc.Name)

		provider, err := buildProvider(pc, logger)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func buildProvider(pc providerConfig, logger *logrus.Entry) (Provider, error) {
	var fixup Fixup

	switch {
	case pc.Fixup != "" && pc.Format != "":
		return nil, fmt.Errorf("provider %q: fixup and format are mutually exclusive", pc.Name)
	case pc.Fixup != "":
		var err error

		fixup, err = ReGroupFixup(pc.Fixup)
		if err != nil {
			return nil, fmt.Errorf("provider %q: bad fixup: %s", pc.Name, err)
		}
	case pc.Format != "":
		fixup = FormatFixup(pc.Format)
	}

	base, err := newBaseProvider(pc.Name, pc.Prefix, pc.Postfix, pc.Trigger, fixup, logger)
	if err != nil {
		return nil, err
	}

	for _, cc := range pc.Channel {
		err = base.AddChannel(cc.Name, cc.Trigger, cc.Default)
		if err != nil {
			return nil, err
		}
	}

	var provider Provider

	switch pc.Type {
	case "html":
		var statusFinder StatusFinder

		switch pc.Status {
		case "":
		case "trac":
			statusFinder = TracStatusFinder
		default:
			return nil, fmt.Errorf("provider %q: unknown status finder %q", pc.Name, pc.Status)
		}

		provider = newHTMLProvider(base, pc.URL, statusFinder)
	case "gitlab":
		provider = newGitlabProvider(base, pc.URL)
	case "proposal":
		provider = newProposalProvider(base, pc.URL)
	case "rt":
		provider, err = newRTProvider(base, pc.RTConfig)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %s", pc.Name, err)
		}
	default:
		return nil, fmt.Errorf("provider %q: unknown type %q (want one of %s)",
			pc.Name, pc.Type, strings.Join(providerTypes, ", "))
	}

	return provider, nil
}

func (p *Plugin) isDebugTarget(target string) bool {
	for _, g := range p.debug {
		if g.Match(target) {
			return true
		}
	}

	return false
}

func (p *Plugin) msgCallback(b *ticketbot.Bot, r *ticketbot.Request) {
	if !r.FromChannel() {
		return
	}

	target := r.Message.Params[0]
	text := r.Message.Trailing()
	debug := p.isDebugTarget(target)

	for _, provider := range p.providers {
		matches := provider.Matches(target, text)

		if debug {
			p.logger.WithFields(logrus.Fields{
				"provider": provider.Name(),
				"target":   target,
				"matches":  matches,
			}).Debug("Checked message for ticket references")
		}

		if len(matches) == 0 {
			continue
		}

		// Lookups hit the network, so get off the read loop before
		// resolving anything.
		go p.announce(b, r, provider, target, matches)
	}
}

func (p *Plugin) announce(b *ticketbot.Bot, r *ticketbot.Request, provider Provider, target string, matches []string) {
	for _, line := range p.collect(provider, target, matches) {
		b.Reply(r, "%s", line)
	}
}

// collect resolves the matched references into display lines, applying the
// repeat limiter and recording history. Matches within one message resolve
// in order, so a reference repeated in the same line only announces once.
func (p *Plugin) collect(provider Provider, target string, matches []string) []string {
	var out []string

	for _, ticket := range matches {
		logger := p.logger.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"target":   target,
			"ticket":   ticket,
		})

		if !p.limiter.allow(provider.Name(), target, ticket) {
			logger.Debug("Rate limited ticket reference")
			continue
		}

		line, err := provider.Lookup(ticket)
		if err != nil {
			logger.WithError(err).Debug("Failed to look up ticket")
			continue
		}

		p.limiter.mark(provider.Name(), target, ticket)

		if p.history != nil {
			p.history.record(target, provider.Name(), ticket, line)
		}

		out = append(out, line)
	}

	return out
}

func (p *Plugin) providersCallback(b *ticketbot.Bot, r *ticketbot.Request) {
	if !r.FromChannel() {
		b.MentionReply(r, "providers only works in a channel")
		return
	}

	target := r.Message.Params[0]

	var names []string

	for _, provider := range p.providers {
		if provider.Handles(target) {
			names = append(names, provider.Name())
		}
	}

	if len(names) == 0 {
		b.MentionReply(r, "No ticket providers watch %s", target)
		return
	}

	b.MentionReply(r, "Ticket providers watching %s: %s", target, strings.Join(names, ", "))
}

func (p *Plugin) lastTicketCallback(b *ticketbot.Bot, r *ticketbot.Request) {
	ticket := r.Message.Trailing()
	if ticket == "" {
		b.MentionReply(r, "Ticket reference required")
		return
	}

	if !r.FromChannel() {
		b.MentionReply(r, "lastticket only works in a channel")
		return
	}

	b.MentionReply(r, "%s", p.history.lastMention(r.Message.Params[0], ticket))
}
