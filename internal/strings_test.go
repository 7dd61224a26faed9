package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseSpace(t *testing.T) {
	require.Equal(t, "a b c", CollapseSpace("  a\n\tb   c\r\n"))
	require.Equal(t, "", CollapseSpace("   "))
	require.Equal(t, "#1234: title", CollapseSpace("#1234:  title"))
}
