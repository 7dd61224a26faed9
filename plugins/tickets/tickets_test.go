package tickets

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	utils "github.com/weaselp/ticketbot/test-utils"
)

var sampleConfig = `
[[provider]]
name = "trac.torproject.org"
type = "html"
url = "https://trac.torproject.org/projects/tor/ticket/"
prefix = "tor"
postfix = " - https://bugs.torproject.org/%s"
trigger = '\b[tT]or#([0-9]{4,})\b'
fixup = '.*?\((.*)\).*? Tor Bug Tracker & Wiki$'
status = "trac"

  [[provider.channel]]
  name = "#tor*"
  default = true

[[provider]]
name = "proposal.torproject.org"
type = "proposal"
url = "https://gitweb.torproject.org/torspec.git/tree/proposals/000-index.txt"
format = "Prop#%s: %s"

  [[provider.channel]]
  name = "#tor*"
  trigger = '\b[Pp]rop#([0-9]+)\b'

[[provider]]
name = "rt.debian.org"
type = "rt"
rtconfig = "/etc/rtrc"
prefix = "DebianRT"

[[provider]]
name = "gitlab.torproject.org"
type = "gitlab"
url = "https://gitlab.torproject.org/"
trigger = '\b(([0-9A-Za-z_-]+/)+[0-9A-Za-z_-]+#[0-9]{4,})\b'
`

func decodeTicketsConfig(t *testing.T, data string) *ticketsConfig {
	conf := &ticketsConfig{}

	_, err := toml.Decode(data, conf)
	require.NoError(t, err)

	return conf
}

func TestBuildProviders(t *testing.T) {
	conf := decodeTicketsConfig(t, sampleConfig)

	providers, err := buildProviders(conf.Provider, testLogger())
	require.NoError(t, err)
	require.Len(t, providers, 4)

	// Dispatch order is configuration order
	assert.Equal(t, "trac.torproject.org", providers[0].Name())
	assert.Equal(t, "proposal.torproject.org", providers[1].Name())
	assert.Equal(t, "rt.debian.org", providers[2].Name())
	assert.Equal(t, "gitlab.torproject.org", providers[3].Name())

	// Channel bindings from the config work
	assert.Equal(t, []string{"1234"}, providers[0].Matches("#tor-dev", "#1234"))
	assert.Equal(t, []string{"269"}, providers[1].Matches("#tor-dev", "prop#269"))
	assert.Nil(t, providers[1].Matches("#elsewhere", "prop#269"))

	assert.True(t, providers[0].Handles("#tor-dev"))
	assert.False(t, providers[0].Handles("#debian-devel"))
}

func TestBuildProvidersErrors(t *testing.T) {
	var data = []struct {
		config string
		errstr string
	}{
		{
			`[[provider]]
			type = "html"`,
			"provider with no name",
		},
		{
			`[[provider]]
			name = "a"
			type = "html"

			[[provider]]
			name = "a"
			type = "html"`,
			"configured multiple times",
		},
		{
			`[[provider]]
			name = "a"
			type = "carrier-pigeon"`,
			"unknown type",
		},
		{
			`[[provider]]
			name = "a"
			type = "html"
			fixup = '(.*)'
			format = "%s %s"`,
			"mutually exclusive",
		},
		{
			`[[provider]]
			name = "a"
			type = "html"
			fixup = '(bad'`,
			"bad fixup",
		},
		{
			`[[provider]]
			name = "a"
			type = "html"
			trigger = '(bad'`,
			"bad trigger",
		},
		{
			`[[provider]]
			name = "a"
			type = "html"
			status = "launchpad"`,
			"unknown status finder",
		},
	}

	for _, testData := range data {
		conf := decodeTicketsConfig(t, testData.config)

		_, err := buildProviders(conf.Provider, testLogger())
		require.Error(t, err, "config: %s", testData.config)
		assert.Contains(t, err.Error(), testData.errstr)
	}
}

// stubProvider serves canned titles so dispatch can be tested without a
// network.
type stubProvider struct {
	baseProvider

	titles  map[string]string
	lookups int
}

func (p *stubProvider) Lookup(ticket string) (string, error) {
	p.lookups++

	title, ok := p.titles[ticket]
	if !ok {
		return "", ErrTicketNotFound
	}

	return p.render(ticket, title, ""), nil
}

func TestCollect(t *testing.T) {
	base := testBase(t, "stub", "", "", "", nil)
	provider := &stubProvider{
		baseProvider: base,
		titles: map[string]string{
			"1234": "a title",
			"5678": "another title",
		},
	}

	plugin := &Plugin{
		limiter: newRepeatLimiter(time.Hour),
		logger:  testLogger(),
	}

	// Lookup failures stay silent
	lines := plugin.collect(provider, "#chan", []string{"1234", "9999", "5678"})
	assert.Equal(t, []string{"a title", "another title"}, lines)

	// A repeated reference inside one message only announces once, and the
	// failed 9999 lookup did not poison the limiter
	lines = plugin.collect(provider, "#chan", []string{"1234", "1234", "9999"})
	assert.Nil(t, lines)

	// Other channels are not limited
	lines = plugin.collect(provider, "#other", []string{"1234"})
	assert.Equal(t, []string{"a title"}, lines)

	// Rate limited references never reach Lookup
	assert.Equal(t, 5, provider.lookups)
}

func TestIsDebugTarget(t *testing.T) {
	plugin := &Plugin{
		debug: []glob.Glob{glob.MustCompile("#*-test")},
	}

	assert.True(t, plugin.isDebugTarget("#tor-test"))
	assert.False(t, plugin.isDebugTarget("#tor"))
}

func TestPluginCommands(t *testing.T) {
	utils.RunTest(t, `
[tickets]
[[tickets.provider]]
name = "trac.torproject.org"
type = "html"
url = "https://trac.torproject.org/projects/tor/ticket/"
prefix = "tor"

  [[tickets.provider.channel]]
  name = "#tor*"
  default = true
`, []string{
		":weasel!user@example.com PRIVMSG #tor-dev :!providers",
		":weasel!user@example.com PRIVMSG #elsewhere :!providers",
	}, []string{
		"PRIVMSG #tor-dev :weasel: Ticket providers watching #tor-dev: trac.torproject.org",
		"PRIVMSG #elsewhere :weasel: No ticket providers watch #elsewhere",
	})
}
