package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReGroupFixup(t *testing.T) {
	fixup, err := ReGroupFixup(`#[0-9]+ - (.*) - Debian Bug report logs$`)
	require.NoError(t, err)

	// Matching titles keep only the group
	assert.Equal(t,
		"#1035298: util-linux: please add errno support",
		fixup("1035298", "#1035298 - util-linux: please add errno support - Debian Bug report logs"))

	// Non-matching titles pass through untouched
	assert.Equal(t, "#1234: Some other page", fixup("1234", "Some other page"))

	// Patterns are anchored at the start of the title
	fixup, err = ReGroupFixup(`xkcd: (.*)`)
	require.NoError(t, err)
	assert.Equal(t, "#927: Standards", fixup("927", "xkcd: Standards"))
	assert.Equal(t, "#927: not xkcd: Standards", fixup("927", "not xkcd: Standards"))

	_, err = ReGroupFixup(`(unclosed`)
	assert.Error(t, err)
}

func TestFormatFixup(t *testing.T) {
	fixup := FormatFixup("Prop#%s: %s")

	assert.Equal(t, "Prop#269: Transitionally secure hybrid handshakes", fixup("269", "Transitionally secure hybrid handshakes"))
}
