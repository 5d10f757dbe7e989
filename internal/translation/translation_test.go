package translation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `{
  "head": {"sha": "abc"},
  "version": 6,
  "data": [
    {
      "namespace": "female",
      "count": 2,
      "data": {
        "kemonomimi": {"name": {"raw": "兽耳", "text": "兽耳"}, "intro": {"text": ""}},
        "glasses": {"name": {"text": "眼镜"}}
      }
    },
    {
      "namespace": "parody",
      "data": {
        "touhou project": {"name": {"text": "东方Project"}}
      }
    }
  ]
}`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(dump))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Tagname: "female:glasses", Text: "眼镜"},
		{Tagname: "female:kemonomimi", Text: "兽耳"},
		{Tagname: "parody:touhou project", Text: "东方Project"},
	}, entries)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("{"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(`{"data": [{"data": {"a": {"name": {"text": "x"}}}}]}`))
	assert.Error(t, err)
}

func TestTableLookup(t *testing.T) {
	entries, err := Parse(strings.NewReader(dump))
	require.NoError(t, err)

	table := NewTable(Map(entries), DefaultPlaceholder)

	assert.Equal(t, "兽耳", table.Lookup("female:kemonomimi"))
	assert.Equal(t, DefaultPlaceholder, table.Lookup("female:unknown"))
	assert.Equal(t, DefaultPlaceholder, table.Lookup("kemonomimi"))
}
