package gml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `# --------------------------------------------------------------------
# USE OF NOAA GML DATA
#
# year  month  decimal-date  average  deseasonalized  ndays  stdev  unc
  2026    5    2026.375      428.51   425.32          30     0.41   0.12
  2026    6    2026.458      -99.99   -99.99          -1     -9.99  -0.99
  2026    7    2026.542      426.90   425.65          29     0.38   0.11
`

func TestParseMonthlyMeans(t *testing.T) {
	t.Parallel()

	got, err := ParseMonthlyMeans(strings.NewReader(sampleRecord))
	require.NoError(t, err)
	require.Len(t, got, 2, "missing-month sentinel rows are skipped")

	assert.Equal(t, Reading{Year: 2026, Month: 5, PPM: 428.51}, got[0])
	assert.Equal(t, Reading{Year: 2026, Month: 7, PPM: 426.90}, got[1])
}

func TestParseMonthlyMeans_CommentsOnly(t *testing.T) {
	t.Parallel()

	got, err := ParseMonthlyMeans(strings.NewReader("# header\n# only comments\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseMonthlyMeans_GarbageLines(t *testing.T) {
	t.Parallel()

	record := "not a data line\n2026 8 2026.625 427.12 425.80 30 0.40 0.12\nshort line\n"
	got, err := ParseMonthlyMeans(strings.NewReader(record))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].Month)
	assert.InDelta(t, 427.12, got[0].PPM, 1e-6)
}
