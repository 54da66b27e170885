package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/recdash/recdash/pkg/recommendations"
)

// Key identifies one paginated, filtered list. Two different keys never share pages.
// Selections that differ only in tag order address the same list.
type Key struct {
	Archived bool
	Search   string
	// Tags holds the selected tags sorted and joined with commas.
	Tags string
	// order is the selection as the user made it, sent to the server as is.
	order string
}

// NewKey builds a Key from a tag selection in any order.
func NewKey(archived bool, search string, tags []string) Key {
	selected := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			selected = append(selected, t)
		}
	}
	order := strings.Join(selected, ",")
	sort.Strings(selected)
	return Key{Archived: archived, Search: search, Tags: strings.Join(selected, ","), order: order}
}

// id is the key without its tag order, used to address cached lists.
func (k Key) id() Key {
	k.order = ""
	return k
}

// TagList returns the tags in the order they were selected.
func (k Key) TagList() []string {
	tags := k.order
	if tags == "" {
		tags = k.Tags
	}
	if tags == "" {
		return nil
	}
	return strings.Split(tags, ",")
}

// Filter returns the request filter for the page at cursor. An empty cursor is the first page.
func (k Key) Filter(cursor string) recommendations.Filter {
	return recommendations.Filter{
		Archived: k.Archived,
		Search:   k.Search,
		Tags:     k.TagList(),
		Cursor:   cursor,
	}
}

// Equal reports whether k and other address the same list.
func (k Key) Equal(other Key) bool {
	return k.id() == other.id()
}

func (k Key) String() string {
	list := "active"
	if k.Archived {
		list = "archived"
	}
	return "recommendations/" + list + "/" + strconv.Quote(k.Search) + "/" + strconv.Quote(k.Tags)
}
