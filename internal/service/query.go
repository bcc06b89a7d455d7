package service

import (
	"math"
	"strconv"

	producterrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/abgdnv/producthub/internal/store"
)

// SearchParams are the caller-facing page, search and sort parameters.
type SearchParams struct {
	PageNumber int
	PageSize   int
	SearchTerm string
	// Sort is "asc" or "desc" on units, or empty for store order.
	Sort string
}

// TranslateQuery checks page number, page size and sort, in that order,
// rejects a page number whose offset overflows, and resolves them into a store.Query.
func TranslateQuery(params SearchParams) (store.Query, error) {
	if params.PageNumber < 1 {
		return store.Query{}, &producterrors.InvalidParameterError{Parameter: producterrors.ParamPageNumber, Value: strconv.Itoa(params.PageNumber)}
	}
	if params.PageSize < 1 {
		return store.Query{}, &producterrors.InvalidParameterError{Parameter: producterrors.ParamPageSize, Value: strconv.Itoa(params.PageSize)}
	}

	// skip must fit in an int64
	if int64(params.PageNumber-1) > math.MaxInt64/int64(params.PageSize) {
		return store.Query{}, &producterrors.InvalidParameterError{Parameter: producterrors.ParamPageNumber, Value: strconv.Itoa(params.PageNumber)}
	}

	var order store.SortOrder
	switch params.Sort {
	case "":
		order = store.SortNone
	case "asc":
		order = store.SortUnitsAsc
	case "desc":
		order = store.SortUnitsDesc
	default:
		return store.Query{}, &producterrors.InvalidParameterError{Parameter: producterrors.ParamSort, Value: params.Sort}
	}

	return store.Query{
		Search: params.SearchTerm,
		Skip:   int64(params.PageNumber-1) * int64(params.PageSize),
		Limit:  int64(params.PageSize),
		Sort:   order,
	}, nil
}
