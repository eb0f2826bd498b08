package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/search"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, 16, s.Grid.Width())
	assert.Equal(t, 10, s.Grid.Height())
	assert.Equal(t, search.ExpandLayer, s.Expansion)
	assert.Equal(t, 100*time.Millisecond, s.VisitedDelay)
	assert.Equal(t, 75*time.Millisecond, s.PathDelay)

	require.Len(t, s.Runs, 2)
	assert.Equal(t, Run{Name: "outbound", Origin: grid.Point{X: 1, Y: 1}, Target: grid.Point{X: 14, Y: 1}}, s.Runs[0])
	assert.Equal(t, Run{Name: "return", Origin: grid.Point{X: 14, Y: 1}, Target: grid.Point{X: 1, Y: 1}}, s.Runs[1])

	for _, run := range s.Runs {
		res, err := s.Planner().Search(run.Origin, run.Target)
		require.NoError(t, err)
		assert.True(t, res.Found, "run %q should find a route", run.Name)
	}
}

func TestParseMinimal(t *testing.T) {
	src := `
grid {
  rows = [[1, 1, 1]]
}
run "only" {
  origin = [0, 0]
  target = [2, 0]
}
`
	s, err := Parse([]byte(src), "minimal.hcl")
	require.NoError(t, err)

	assert.Equal(t, search.ExpandLayer, s.Expansion)
	assert.Equal(t, DefaultVisitedDelay, s.VisitedDelay)
	assert.Equal(t, DefaultPathDelay, s.PathDelay)
	assert.Equal(t, [][]int{{1, 1, 1}}, s.Grid.Matrix())
	require.Len(t, s.Runs, 1)
	assert.Equal(t, "only", s.Runs[0].Name)
}

func TestParseOpenWallVariables(t *testing.T) {
	src := `
expansion     = "winner"
visited_delay = "0s"
path_delay    = "1ms"

grid {
  rows = [
    [open, wall],
    [open, open],
  ]
}
run "around" {
  origin = [0, 0]
  target = [1, 1]
}
`
	s, err := Parse([]byte(src), "vars.hcl")
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 0}, {1, 1}}, s.Grid.Matrix())
	assert.Equal(t, search.ExpandWinner, s.Expansion)
	assert.Equal(t, time.Duration(0), s.VisitedDelay)
	assert.Equal(t, time.Millisecond, s.PathDelay)
}

func TestParseErrors(t *testing.T) {
	const goodGrid = `grid { rows = [[1, 1], [1, 1]] }`
	const goodRun = `run "r" {
  origin = [0, 0]
  target = [1, 1]
}`

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `grid {`, "failed to parse"},
		{"missing grid", goodRun, "failed to decode"},
		{"unknown attribute", goodGrid + "\ncolour = \"red\"\n" + goodRun, "failed to decode"},
		{"no runs", goodGrid, "at least one run"},
		{"ragged rows", `grid { rows = [[1, 1], [1]] }` + "\n" + goodRun, "invalid grid shape"},
		{"bad expansion", "expansion = \"diagonal\"\n" + goodGrid + "\n" + goodRun, "unknown expansion"},
		{"bad delay", "visited_delay = \"soon\"\n" + goodGrid + "\n" + goodRun, "visited_delay"},
		{"negative delay", "path_delay = \"-1s\"\n" + goodGrid + "\n" + goodRun, "must not be negative"},
		{"short origin", goodGrid + "\nrun \"r\" {\n origin = [0]\n target = [1, 1]\n}", "origin must be [x, y]"},
		{"target out of bounds", goodGrid + "\nrun \"r\" {\n origin = [0, 0]\n target = [2, 0]\n}", "out of bounds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "bad.hcl")
		})
	}
}

func TestParseTargetOutOfBoundsUnwraps(t *testing.T) {
	src := `grid { rows = [[1]] }
run "r" {
  origin = [0, 0]
  target = [3, 3]
}`
	_, err := Parse([]byte(src), "oob.hcl")
	var oob *grid.OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 3, oob.X)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.hcl")
	require.NoError(t, os.WriteFile(path, defaultSource, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Grid.Matrix(), s.Grid.Matrix())

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	assert.ErrorContains(t, err, "read scenario")
}

func TestParseText(t *testing.T) {
	src := `// two rooms
#####
#..1#

#0.##
#####
`
	g, err := ParseText(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0},
	}, g.Matrix())

	g, err = ParseText(strings.NewReader("1 0 1\n1 1 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Width())

	_, err = ParseText(strings.NewReader("1x1\n"))
	assert.ErrorContains(t, err, "line 1")

	_, err = ParseText(strings.NewReader("11\n1\n"))
	var shapeErr *grid.InvalidShapeError
	assert.ErrorAs(t, err, &shapeErr)

	_, err = ParseText(strings.NewReader("// nothing\n"))
	assert.ErrorAs(t, err, &shapeErr)
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("14,1")
	require.NoError(t, err)
	assert.Equal(t, grid.Point{X: 14, Y: 1}, p)

	p, err = ParsePoint(" 3 , 4 ")
	require.NoError(t, err)
	assert.Equal(t, grid.Point{X: 3, Y: 4}, p)

	for _, bad := range []string{"", "3", "a,1", "1,b", "1;2"} {
		_, err := ParsePoint(bad)
		assert.Error(t, err, "ParsePoint(%q)", bad)
	}
}
