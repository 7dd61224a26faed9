package tickets

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLProviderLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/ticket/") {
		case "1035298":
			fmt.Fprint(w, `<html><head><title>
				#1035298 - util-linux: please add errno support - Debian Bug report logs
			</title></head><body></body></html>`)
		case "42":
			fmt.Fprint(w, `<html><head><title>untitled page</title></head></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	fixup, err := ReGroupFixup(`#[0-9]+ - (.*) - Debian Bug report logs$`)
	require.NoError(t, err)

	base := testBase(t, "bugs.debian.org", "Debian", " - https://bugs.debian.org/%s", "", fixup)
	p := newHTMLProvider(base, ts.URL+"/ticket/", nil)

	line, err := p.Lookup("1035298")
	require.NoError(t, err)
	assert.Equal(t, "Debian#1035298: util-linux: please add errno support - https://bugs.debian.org/1035298", line)

	// Titles that don't match the fixup still render
	line, err = p.Lookup("42")
	require.NoError(t, err)
	assert.Equal(t, "Debian#42: untitled page - https://bugs.debian.org/42", line)

	// Missing tickets are a lookup failure, not channel output
	_, err = p.Lookup("99999")
	assert.Equal(t, ErrTicketNotFound, err)
}

func TestHTMLProviderStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>#7890 (Do something great) - Tor Bug Tracker &amp; Wiki</title></head>
			<body><span class="trac-status"><a href="/query?status=closed">closed</a></span></body></html>`)
	}))
	defer ts.Close()

	fixup, err := ReGroupFixup(`.*?\((.*)\).*? Tor Bug Tracker & Wiki$`)
	require.NoError(t, err)

	base := testBase(t, "trac", "tor", "", "", fixup)
	p := newHTMLProvider(base, ts.URL+"/", TracStatusFinder)

	line, err := p.Lookup("7890")
	require.NoError(t, err)
	assert.Equal(t, "tor#7890: Do something great [closed]", line)
}

func TestHTMLProviderNoTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `plain text, no markup`)
	}))
	defer ts.Close()

	base := testBase(t, "plain", "", "", "", nil)
	p := newHTMLProvider(base, ts.URL+"/", nil)

	_, err := p.Lookup("1")
	assert.Equal(t, ErrTicketNotFound, err)
}
