package colors_test

import (
	"nerisdash/pkg/colors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexToRGB(t *testing.T) {
	c, err := colors.HexToRGB("#ff0000")
	require.NoError(t, err)
	require.InDelta(t, 1, c.R, 1e-9)
	require.Zero(t, c.G)
	require.Zero(t, c.B)

	c, err = colors.HexToRGB("00ff00")
	require.NoError(t, err)
	require.InDelta(t, 1, c.G, 1e-9)

	_, err = colors.HexToRGB("#zzzzzz")
	require.Error(t, err)

	require.Equal(t, "#c42b47", mustRGB(t, "#c42b47").Hex())
}

func mustRGB(t *testing.T, hex string) colors.RGB {
	t.Helper()
	c, err := colors.HexToRGB(hex)
	require.NoError(t, err)

	return c
}

func TestLighten(t *testing.T) {
	require.Equal(t, "#808080", colors.Lighten("#000000", 0.5))
	require.Equal(t, "#ffffff", colors.Lighten("#ffffff", 0.3))
	require.Equal(t, "#ffffff", colors.Lighten("#c42b47", 1))
	require.Equal(t, "#c42b47", colors.Lighten("#c42b47", 0))
	require.Equal(t, "not a color", colors.Lighten("not a color", 0.2))

	// lightening never darkens a channel
	base := mustRGB(t, "#9302a6")
	lighter := mustRGB(t, colors.Lighten("#9302a6", 0.15))
	require.GreaterOrEqual(t, lighter.R, base.R)
	require.GreaterOrEqual(t, lighter.G, base.G)
	require.GreaterOrEqual(t, lighter.B, base.B)
}

func TestHierarchical(t *testing.T) {
	got := colors.Hierarchical(
		[]string{"", "all", "FIRE", "FIRE||STRUCTURE_FIRE", "FIRE||STRUCTURE_FIRE||CHIMNEY", "UNKNOWN||X"},
		colors.IncidentTypes, colors.Hierarchy, colors.HierarchyIncrement,
	)

	require.Equal(t, colors.Hierarchy, got[""])
	require.Equal(t, colors.Hierarchy, got["all"])
	require.Equal(t, "#c42b47", got["FIRE"])
	require.Equal(t, colors.Lighten("#c42b47", 0.15), got["FIRE||STRUCTURE_FIRE"])
	require.Equal(t, colors.Lighten("#c42b47", 0.30), got["FIRE||STRUCTURE_FIRE||CHIMNEY"])
	require.Equal(t, colors.Lighten(colors.Hierarchy, 0.15), got["UNKNOWN||X"])
	require.NotEqual(t, got["FIRE"], got["FIRE||STRUCTURE_FIRE"])
}
