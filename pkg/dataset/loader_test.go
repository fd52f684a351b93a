package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRows are three models of a Z sweep in canonical column order.
var sampleRows = [][]float64{
	{1e-3, 45.0, 44.2, 38.5, 40.1, 1.2, 0.8, 0.0},
	{1e-3, 50.0, 48.9, 42.7, 35.4, 12.9, 1.1, 0.0},
	{2e-3, 55.0, 52.3, 46.0, 28.8, 22.4, 1.6, 0.0},
}

// writeTable renders rows into a datafile1-style text: header padding, one
// line per row with an index token in front and an annotation token behind,
// then footer lines.
func writeTable(t *testing.T, header int, rows [][]float64, footer []string) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < header; i++ {
		fmt.Fprintf(&b, "# header line %d\n", i)
	}
	for i, r := range rows {
		b.WriteString(strconv.Itoa(i + 1))
		for _, v := range r {
			b.WriteString("  ")
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteString("  PPI\n")
	}
	for _, l := range footer {
		b.WriteString(l)
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "datafile.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func layoutFor(header, rows int) Layout {
	return Layout{HeaderLines: header, DataLines: rows, Columns: DefaultColumns()}
}

func TestLoad_MinimalThreeRows(t *testing.T) {
	path := writeTable(t, 2, sampleRows, []string{"# footer", "end of table"})

	tbl, err := Load(path, layoutFor(2, 3))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	require.Equal(t, DefaultColumns(), tbl.Columns())

	for i, want := range sampleRows {
		got := tbl.Row(i)
		require.Len(t, got, 8)
		for j := range want {
			assert.InDelta(t, want[j], got[j], 1e-12, "row %d col %s", i, DefaultColumns()[j])
		}
	}

	obs, err := tbl.Observations()
	require.NoError(t, err)
	assert.InDelta(t, 42.7, obs[1].Mco, 1e-12)
	assert.InDelta(t, 12.9, obs[1].DMPulse, 1e-12)
	assert.InDelta(t, 2e-3, obs[2].Z, 1e-15)
}

func TestLoad_TrailingLinesIgnored(t *testing.T) {
	base := writeTable(t, 2, sampleRows, nil)
	noisy := writeTable(t, 2, sampleRows, []string{
		"1 not numbers at all",
		"99 1 2 3",
		"",
		"# some other parameter sweep follows",
	})

	a, err := Load(base, layoutFor(2, 3))
	require.NoError(t, err)
	b, err := Load(noisy, layoutFor(2, 3))
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.Row(i), b.Row(i), "row %d", i)
	}
}

func TestLoad_ExtraRowsPastBandIgnored(t *testing.T) {
	// rows of a different sweep sit after the band
	rows := append([][]float64{}, sampleRows...)
	rows = append(rows, []float64{1e-3, 60, 58, 52, 20, 30, 2, 0})

	tbl, err := Load(writeTable(t, 1, rows, nil), layoutFor(1, 3))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	mco, err := tbl.Column(ColMco)
	require.NoError(t, err)
	assert.Equal(t, []float64{38.5, 42.7, 46.0}, mco)
}

func TestLoad_ColumnOrderIndependent(t *testing.T) {
	perm := []int{5, 3, 0, 7, 1, 6, 2, 4}
	names := DefaultColumns()
	permNames := make([]string, len(perm))
	for k, j := range perm {
		permNames[k] = names[j]
	}
	permRows := make([][]float64, len(sampleRows))
	for i, r := range sampleRows {
		permRows[i] = make([]float64, len(perm))
		for k, j := range perm {
			permRows[i][k] = r[j]
		}
	}

	orig, err := Load(writeTable(t, 2, sampleRows, nil), layoutFor(2, 3))
	require.NoError(t, err)
	shuffled, err := Load(writeTable(t, 2, permRows, nil), Layout{HeaderLines: 2, DataLines: 3, Columns: permNames})
	require.NoError(t, err)

	for _, name := range names {
		want, err := orig.Column(name)
		require.NoError(t, err)
		got, err := shuffled.Column(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, "column %s", name)
	}

	a, err := orig.Observations()
	require.NoError(t, err)
	b, err := shuffled.Observations()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoad_ShortFile(t *testing.T) {
	path := writeTable(t, 2, sampleRows[:2], nil)

	_, err := Load(path, layoutFor(2, 3))
	require.Error(t, err)

	var me *MalformedInputError
	require.True(t, errors.As(err, &me))
	assert.ErrorIs(t, err, ErrShortInput)
	assert.ErrorIs(t, err, ErrMalformedInput)
	t.Logf("short file: %v", err)
}

func TestLoad_WrongFieldCount(t *testing.T) {
	rows := [][]float64{
		sampleRows[0],
		{1e-3, 50.0, 48.9, 42.7, 35.4, 12.9, 1.1}, // one value missing
		sampleRows[2],
	}
	_, err := Load(writeTable(t, 2, rows, nil), layoutFor(2, 3))

	var me *MalformedInputError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 4, me.Line, "second data line after two header lines")
	assert.Contains(t, me.Reason, "got 7 numeric fields, want 8")
}

func TestLoad_NonNumericField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	content := "header\n1 0.001 45 44 38 40 x 0.8 0 PPI\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path, layoutFor(1, 1))
	var me *MalformedInputError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Line)
	var ne *strconv.NumError
	assert.True(t, errors.As(err, &ne), "strconv error should be wrapped")
}

func TestLoad_HeaderIsNeverParsed(t *testing.T) {
	// header contains numeric-looking junk of the wrong width
	path := filepath.Join(t.TempDir(), "hdr.txt")
	content := "1 2 3\n4 5\n1 0.001 45 44 38 40 1 0.8 0 PPI\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := Load(path, layoutFor(2, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), DefaultLayout())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLayout_Validate(t *testing.T) {
	assert.NoError(t, DefaultLayout().Validate())

	bad := []Layout{
		{HeaderLines: -1, DataLines: 1, Columns: DefaultColumns()},
		{HeaderLines: 0, DataLines: 0, Columns: DefaultColumns()},
		{HeaderLines: 0, DataLines: 1},
		{HeaderLines: 0, DataLines: 1, Columns: []string{"Z", ""}},
		{HeaderLines: 0, DataLines: 1, Columns: []string{"Z", "Z"}},
	}
	for i, l := range bad {
		err := l.Validate()
		assert.ErrorIs(t, err, ErrInvalidLayout, "case %d", i)

		_, err = Read(strings.NewReader(""), l)
		assert.ErrorIs(t, err, ErrInvalidLayout, "read case %d", i)
	}
}

func TestDefaultLayout_Band(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 43, l.HeaderLines)
	assert.Equal(t, 225, l.DataLines)
	assert.Equal(t, []string{"Z", "Mhe_init", "Mhe_preCC", "Mco", "Mbh", "dMpulse", "dMwind", "dMSN"}, l.Columns)
}
