package listquery

import "strconv"

// SortLink is the header link for one sortable column.
type SortLink struct {
	URL       string
	Active    bool
	Direction Direction
}

// SortLinks builds header links for keys against base, honouring the
// toggle rule of Query.Toggle.
func SortLinks(q Query, base string, keys ...string) map[string]SortLink {
	links := make(map[string]SortLink, len(keys))
	for _, key := range keys {
		link := SortLink{URL: q.Toggle(key).URL(base)}
		if q.Sort.Key == key {
			link.Active = true
			link.Direction = q.Sort.Direction
		}
		links[key] = link
	}
	return links
}

// PageURL renders q with an explicit page and page size.
func PageURL(q Query, base string, page, perPage int) string {
	values := q.Values()
	values.Set(paramPage, strconv.Itoa(page))
	values.Set(paramPerPage, strconv.Itoa(perPage))
	return base + "?" + values.Encode()
}
