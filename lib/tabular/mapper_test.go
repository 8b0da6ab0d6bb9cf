package tabular

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapColumnsFirstClaimWins(t *testing.T) {
	specs := []FieldSpec{
		{Field: "price", Match: Contains("price")},
	}
	columns := MapColumns([]string{"Price", "Closing Price"}, specs)
	require.Equal(t, 0, columns["price"])
}

func TestMapColumnsMultipleSpecsSameField(t *testing.T) {
	// a later spec may claim the field for an earlier column, but once
	// claimed no spec reassigns it
	specs := []FieldSpec{
		{Field: "price", Match: All(Contains("price"), ContainsNone("bid", "ask"))},
		{Field: "price", Match: Contains("bid price")},
		{Field: "price", Match: Contains("ask price")},
	}
	columns := MapColumns([]string{"Bid Price", "Price", "Ask Price"}, specs)
	require.Equal(t, 0, columns["price"])
}

func TestMapColumnsUnmatchedHeaders(t *testing.T) {
	specs := []FieldSpec{
		{Field: "volume", Match: Contains("volume")},
	}
	columns := MapColumns([]string{"Foo", "Bar"}, specs)
	require.Empty(t, columns)
}

func TestCellGuardsShortRows(t *testing.T) {
	columns := ColumnMap{"price": 3}
	_, ok := columns.Cell([]string{"a", "b"}, "price")
	require.False(t, ok)

	v, ok := columns.Cell([]string{"a", "b", "c", " 1.50 "}, "price")
	require.True(t, ok)
	require.Equal(t, "1.50", v)

	_, ok = columns.Cell([]string{"a"}, "unmapped")
	require.False(t, ok)
}

func TestDefaultPositional(t *testing.T) {
	columns := DefaultPositional()
	require.Equal(t, ColumnMap{
		"timestamp": 0,
		"price":     1,
		"volume":    2,
		"buyer":     3,
		"seller":    4,
	}, columns)
}

func TestHasToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		want   bool
	}{
		{"exchange", "exchange", true},
		{"stock exchange", "exchange", true},
		{"exchange(primary)", "exchange", true},
		{"ex", "exchange", false},
		{"exchanges", "exchange", false},
	}
	for _, test := range cases {
		require.Equal(t, test.want, HasToken(test.token)(test.header),
			"header %q token %q", test.header, test.token)
	}
}

func TestPredicateCombinators(t *testing.T) {
	require.True(t, ContainsAll("time", "et")("time (et)"))
	require.False(t, ContainsAll("time", "et")("time"))

	require.True(t, ContainsNone("bid", "ask")("price"))
	require.False(t, ContainsNone("bid", "ask")("bid price"))

	require.True(t, Any(Contains("volume"), Contains("size"))("lot size"))
	require.False(t, Any(Contains("volume"), Contains("size"))("price"))

	require.True(t, All(Contains("change"), ContainsNone("exchange"))("change"))
	require.False(t, All(Contains("change"), ContainsNone("exchange"))("exchange"))
}
