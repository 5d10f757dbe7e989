package tags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshot(t *testing.T) {
	input := "tagname,count\nfemale:kemonomimi,5123\nmale:glasses,0\n\"parody:a, b\",7\n"

	got, err := ParseSnapshot(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Snapshot{"female:kemonomimi": 5123, "male:glasses": 0, "parody:a, b": 7}, got)
	assert.Equal(t, []string{"female:kemonomimi", "male:glasses", "parody:a, b"}, got.Names())
}

func TestParseSnapshotColumnOrder(t *testing.T) {
	input := "\ufeffcount,extra,tagname\n12,x,artist:foo\n"

	got, err := ParseSnapshot(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Snapshot{"artist:foo": 12}, got)
}

func TestParseSnapshotSumsRepeatedNames(t *testing.T) {
	got, err := ParseSnapshot(strings.NewReader("tagname,count\na,1\na,2\n"))
	require.NoError(t, err)

	assert.Equal(t, Snapshot{"a": 3}, got)
}

func TestParseSnapshotErrors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "",
		"missing column": "tagname,total\na,1\n",
		"bad count":      "tagname,count\na,many\n",
		"negative count": "tagname,count\na,-1\n",
		"empty name":     "tagname,count\n,1\n",
		"short row":      "tagname,count\na\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSnapshot(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
