package feed

import (
	"net/url"
	"strings"
	"time"
)

// Query-string contract shared with the server:
//
//	?search=<text>&types=<csv>&status=all|read|unread&sortBy=newest|oldest|type
//	&dateFrom=<RFC3339>&dateTo=<RFC3339>
//
// Fields equal to their default are omitted entirely, so the default criteria
// serialize to an empty query string. The comma is the types separator, so a
// type tag may not contain one; Normalize drops such tags before encoding.

// ParseQuery reads filter criteria from query parameters. Absent fields
// resolve to their defaults. Unknown status/sort values and unparseable dates
// are dropped rather than propagated.
func ParseQuery(values url.Values) Filters {
	f := DefaultFilters()

	f.Search = values.Get("search")

	if csv := values.Get("types"); csv != "" {
		for _, tok := range strings.Split(csv, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				f.Types = append(f.Types, tok)
			}
		}
	}

	switch Status(values.Get("status")) {
	case StatusRead:
		f.Status = StatusRead
	case StatusUnread:
		f.Status = StatusUnread
	}

	switch Sort(values.Get("sortBy")) {
	case SortOldest:
		f.SortBy = SortOldest
	case SortType:
		f.SortBy = SortType
	}

	from, fromOK := parseDate(values.Get("dateFrom"))
	to, toOK := parseDate(values.Get("dateTo"))
	if fromOK || toOK {
		r := &DateRange{}
		if fromOK {
			r.From = from
		}
		if toOK {
			r.To = to
		} else if fromOK {
			r.To = from
		}
		if !fromOK && toOK {
			r.From = to
		}
		f.DateRange = r
	}

	f.Normalize()
	return f
}

// EncodeQuery emits only the non-default fields of f, keeping URLs minimal.
func EncodeQuery(f Filters) url.Values {
	values := url.Values{}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if len(f.Types) > 0 {
		values.Set("types", strings.Join(f.Types, ","))
	}
	if f.Status != "" && f.Status != StatusAll {
		values.Set("status", string(f.Status))
	}
	if f.SortBy != "" && f.SortBy != SortNewest {
		values.Set("sortBy", string(f.SortBy))
	}
	if f.DateRange != nil {
		values.Set("dateFrom", f.DateRange.From.UTC().Format(time.RFC3339))
		values.Set("dateTo", f.DateRange.To.UTC().Format(time.RFC3339))
	}
	return values
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
