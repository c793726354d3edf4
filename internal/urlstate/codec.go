// Package urlstate maps filter state to and from its query-string
// form. Decoding happens once when a catalog session is established;
// after that the URL is an export target only and is never read back.
package urlstate

import (
	"net/url"
	"strconv"

	"storefront-service/internal/models"
)

// Defaults for the singular query fields.
const (
	DefaultPage    = 1
	DefaultPerPage = 12
)

// PerPageOptions are the allowed page sizes.
var PerPageOptions = []int{12, 24, 36, 48}

// State is the decoded query: filter selection plus sort, pagination
// and view mode.
type State struct {
	Filters models.FilterSelection
	Sort    models.SortOption
	Page    int
	PerPage int
	View    models.ViewType
}

// DefaultState returns the state an empty query decodes to.
func DefaultState() State {
	return State{
		Sort:    models.SortRelevance,
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		View:    models.ViewGrid,
	}
}

// Decode parses query parameters into a State. Absent keys mean
// defaults; malformed numerics, page sizes outside PerPageOptions and
// unrecognized sort or view tokens fall back to defaults silently.
func Decode(query url.Values) State {
	st := DefaultState()

	for _, t := range models.FacetTypes {
		if values := query[string(t)]; len(values) > 0 {
			st.Filters.SetValues(t, append([]string(nil), values...))
		}
	}

	if sort := models.SortOption(query.Get("sort")); models.ValidSortOption(sort) {
		st.Sort = sort
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page >= 1 {
		st.Page = page
	}
	if perPage, err := strconv.Atoi(query.Get("perPage")); err == nil {
		for _, opt := range PerPageOptions {
			if perPage == opt {
				st.PerPage = perPage
				break
			}
		}
	}
	if view := models.ViewType(query.Get("view")); models.ValidViewType(view) {
		st.View = view
	}

	return st
}

// Encode renders the canonical query string: facet keys in fixed
// order with values in selection order, then sort (omitted when it is
// the relevance default), page, perPage and view. Equal states encode
// to byte-equal strings.
func Encode(st State) string {
	// Built by hand rather than through url.Values.Encode, which
	// sorts keys alphabetically and would scatter the facet groups.
	var buf []byte
	appendPair := func(key, value string) {
		if len(buf) > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, url.QueryEscape(key)...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(value)...)
	}

	for _, t := range models.FacetTypes {
		for _, v := range st.Filters.Values(t) {
			appendPair(string(t), v)
		}
	}

	if st.Sort != models.SortRelevance && st.Sort != "" {
		appendPair("sort", string(st.Sort))
	}
	appendPair("page", strconv.Itoa(st.Page))
	appendPair("perPage", strconv.Itoa(st.PerPage))
	appendPair("view", string(st.View))

	return string(buf)
}
