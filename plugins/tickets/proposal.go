package tickets

import (
	"regexp"
	"sync"
	"time"

	"github.com/Unknwon/com"
)

const proposalIndexExpiry = 2 * time.Hour

// proposalProvider answers lookups from a plain-text proposal index file
// ("000-index.txt" style: one "NUM  Title" line per proposal). The index is
// fetched at most once per expiry window; a failed refresh keeps serving the
// stale copy.
type proposalProvider struct {
	baseProvider

	url string

	mu     sync.Mutex
	data   string
	expire time.Time
}

func newProposalProvider(base baseProvider, url string) *proposalProvider {
	if base.fixup == nil {
		base.fixup = FormatFixup("Prop#%s: %s")
	}

	p := &proposalProvider{
		baseProvider: base,
		url:          url,
	}

	// Warm the cache without holding up plugin loading.
	go p.update()

	return p
}

func (p *proposalProvider) update() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Now().Before(p.expire) {
		return
	}

	data, err := com.HttpGetBytes(client, p.url, nil)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to refresh proposal index")
		return
	}

	p.data = string(data)
	p.expire = time.Now().Add(proposalIndexExpiry)
}

func (p *proposalProvider) Lookup(ticket string) (string, error) {
	p.update()

	p.mu.Lock()
	data := p.data
	p.mu.Unlock()

	if data == "" {
		return "", ErrTicketNotFound
	}

	re, err := regexp.Compile(`(?m)^` + regexp.QuoteMeta(ticket) + `[ \t]*(.*)$`)
	if err != nil {
		return "", err
	}

	m := re.FindStringSubmatch(data)
	if m == nil {
		return "", ErrTicketNotFound
	}

	return p.render(ticket, m[1], ""), nil
}
