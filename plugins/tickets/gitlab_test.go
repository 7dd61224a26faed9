package tickets

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitlabProviderLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tpo/core/tor/-/issues/40001" {
			http.NotFound(w, r)
			return
		}

		fmt.Fprint(w, `<html><head><title>Relays should do the thing (#40001) · Issues · tpo/core/tor · GitLab</title></head></html>`)
	}))
	defer ts.Close()

	base := testBase(t, "gitlab", "", "", `\b(([0-9A-Za-z_-]+/)+[0-9A-Za-z_-]+#[0-9]{4,})\b`, nil)
	p := newGitlabProvider(base, ts.URL+"/")

	// The trigger hands the whole path#number reference to Lookup
	assert.Equal(t,
		[]string{"tpo/core/tor#40001"},
		p.Matches("#tor-dev", "please review tpo/core/tor#40001 soon"))

	line, err := p.Lookup("tpo/core/tor#40001")
	require.NoError(t, err)
	assert.Equal(t, "tpo/core/tor#40001: Relays should do the thing (#40001) · Issues · tpo/core/tor · GitLab", line)

	_, err = p.Lookup("tpo/core/tor#49999")
	assert.Equal(t, ErrTicketNotFound, err)

	// References without a project path never resolve
	_, err = p.Lookup("40001")
	assert.Equal(t, ErrTicketNotFound, err)
}
