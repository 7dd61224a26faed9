package tickets

import (
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/yhat/scrape"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/weaselp/ticketbot/internal"
)

// NOTE: This nasty work is done so we ignore invalid ssl certs. Several of
// the trackers this has been pointed at over the years had broken certs.
var client = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	},
	Timeout: 5 * time.Second,
}

// A StatusFinder pulls a ticket status out of an already fetched document.
type StatusFinder func(root *html.Node) string

// TracStatusFinder extracts the status field from a trac ticket page.
func TracStatusFinder(root *html.Node) string {
	n, ok := scrape.Find(root, scrape.ByClass("trac-status"))
	if !ok {
		return ""
	}

	return internal.CollapseSpace(scrape.Text(n))
}

// htmlProvider extracts the title tag from html pages at $url$ticket.
type htmlProvider struct {
	baseProvider

	url          string
	statusFinder StatusFinder
}

func newHTMLProvider(base baseProvider, url string, statusFinder StatusFinder) *htmlProvider {
	return &htmlProvider{
		baseProvider: base,
		url:          url,
		statusFinder: statusFinder,
	}
}

func (p *htmlProvider) Lookup(ticket string) (string, error) {
	root, err := fetchDocument(p.url + ticket)
	if err != nil {
		return "", err
	}

	n, ok := scrape.Find(root, scrape.ByTag(atom.Title))
	if !ok {
		return "", ErrTicketNotFound
	}

	status := ""
	if p.statusFinder != nil {
		status = p.statusFinder(root)
	}

	return p.render(ticket, scrape.Text(n), status), nil
}

// fetchDocument grabs a URL and parses it as HTML. Anything but a 200 is
// treated as a missing ticket.
func fetchDocument(url string) (*html.Node, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrTicketNotFound
	}

	// We only care about the head, but titles have been spotted surprisingly
	// deep into tracker pages, so parse up to 1M.
	root, err := html.Parse(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, err
	}

	return root, nil
}
