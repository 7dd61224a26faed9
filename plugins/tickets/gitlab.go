package tickets

import (
	"strings"

	"github.com/yhat/scrape"
	"golang.org/x/net/html/atom"
)

// gitlabProvider resolves "group/project#1234" style references against a
// gitlab instance. The matched reference carries the project path, so the
// trigger must capture the full "path#number" form.
type gitlabProvider struct {
	baseProvider

	url string
}

func newGitlabProvider(base baseProvider, url string) *gitlabProvider {
	if base.fixup == nil {
		base.fixup = FormatFixup("%s: %s")
	}

	return &gitlabProvider{
		baseProvider: base,
		url:          url,
	}
}

func (p *gitlabProvider) Lookup(ticket string) (string, error) {
	idx := strings.LastIndex(ticket, "#")
	if idx < 1 {
		return "", ErrTicketNotFound
	}

	path, number := ticket[:idx], ticket[idx+1:]

	root, err := fetchDocument(p.url + path + "/-/issues/" + number)
	if err != nil {
		return "", err
	}

	n, ok := scrape.Find(root, scrape.ByTag(atom.Title))
	if !ok {
		return "", ErrTicketNotFound
	}

	return p.render(ticket, scrape.Text(n), ""), nil
}
