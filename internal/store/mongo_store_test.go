package store

import (
	"strings"
	"testing"

	perrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPageFilter(t *testing.T) {
	testCases := []struct {
		name     string
		search   string
		expected bson.M
	}{
		{name: "empty matches all", search: "", expected: bson.M{}},
		{
			name:   "term is quoted",
			search: "a.b*",
			expected: bson.M{"$or": bson.A{
				bson.M{"name": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
				bson.M{"description": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
			}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, pageFilter(Query{Search: tc.search}))
		})
	}
}

func TestPageOptions(t *testing.T) {
	testCases := []struct {
		name string
		sort SortOrder
		want any
	}{
		{name: "none", sort: SortNone, want: nil},
		{name: "asc", sort: SortUnitsAsc, want: bson.D{{Key: "units", Value: 1}, {Key: "_id", Value: 1}}},
		{name: "desc", sort: SortUnitsDesc, want: bson.D{{Key: "units", Value: -1}, {Key: "_id", Value: 1}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			opts := pageOptions(Query{Skip: 20, Limit: 10, Sort: tc.sort})
			// then
			require.NotNil(t, opts.Skip)
			require.NotNil(t, opts.Limit)
			assert.Equal(t, int64(20), *opts.Skip)
			assert.Equal(t, int64(10), *opts.Limit)
			assert.Equal(t, tc.want, opts.Sort)
		})
	}
}

func TestDocumentConversion(t *testing.T) {
	// given
	p := Product{
		ID:          primitive.NewObjectID(),
		Name:        "Lamp",
		Description: "Desk lamp",
		Price:       decimal.RequireFromString("19.99"),
		Units:       4,
	}
	// when
	doc, err := toDocument(p)
	require.NoError(t, err)
	back, err := fromDocument(doc)
	// then
	require.NoError(t, err)
	assert.Equal(t, "19.99", doc.Price.String())
	assert.Equal(t, p.ID, back.ID)
	assert.Equal(t, p.Name, back.Name)
	assert.Equal(t, p.Description, back.Description)
	assert.True(t, p.Price.Equal(back.Price))
	assert.Equal(t, p.Units, back.Units)
}

func TestEncodePrice(t *testing.T) {
	testCases := []struct {
		name     string
		price    decimal.Decimal
		expected string
		ok       bool
	}{
		{name: "cents", price: decimal.RequireFromString("19.99"), expected: "19.99", ok: true},
		{name: "tiny", price: decimal.New(1, -400), ok: true},
		{name: "34 digits", price: decimal.RequireFromString("1." + strings.Repeat("0", 32) + "1"), ok: true},
		{name: "36 digits", price: decimal.RequireFromString("1." + strings.Repeat("0", 34) + "1")},
		{name: "exponent too large", price: decimal.New(1, 7000)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			d, ok := EncodePrice(tc.price)
			// then
			assert.Equal(t, tc.ok, ok)
			if tc.expected != "" {
				assert.Equal(t, tc.expected, d.String())
			}
		})
	}
}

func TestToDocument_UnencodablePrice(t *testing.T) {
	// given
	p := Product{ID: primitive.NewObjectID(), Name: "Lamp", Description: "Desk lamp", Price: decimal.New(1, 7000), Units: 1}
	// when
	_, err := toDocument(p)
	// then
	assert.ErrorIs(t, err, perrors.ErrUnencodablePrice)
}

func TestFromDocument_KeepsTinyPrice(t *testing.T) {
	// given
	p := Product{ID: primitive.NewObjectID(), Name: "Pin", Description: "Tiny", Price: decimal.New(1, -400), Units: 1}
	doc, err := toDocument(p)
	require.NoError(t, err)
	// when
	back, err := fromDocument(doc)
	// then
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(back.Price))
}
