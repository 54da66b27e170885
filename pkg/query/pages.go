package query

import "github.com/recdash/recdash/pkg/recommendations"

// Flatten returns the recommendations of pages in order, keeping only the
// first occurrence of every id.
func Flatten(pages []recommendations.Page) []recommendations.Recommendation {
	seen := make(map[string]struct{})
	var out []recommendations.Recommendation
	for _, p := range pages {
		for _, r := range p.Data {
			if _, ok := seen[r.RecommendationID]; ok {
				continue
			}
			seen[r.RecommendationID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// RemoveFromPages returns a new page sequence without id. The first page's
// TotalItems drops by one when id was present, never going below zero.
// The input pages are not modified.
func RemoveFromPages(pages []recommendations.Page, id string) ([]recommendations.Page, bool) {
	out := make([]recommendations.Page, len(pages))
	found := false
	for i, p := range pages {
		np := p
		np.Data = make([]recommendations.Recommendation, 0, len(p.Data))
		for _, r := range p.Data {
			if r.RecommendationID == id {
				found = true
				continue
			}
			np.Data = append(np.Data, r)
		}
		out[i] = np
	}
	if found && len(out) > 0 && out[0].Pagination.TotalItems > 0 {
		out[0].Pagination.TotalItems--
	}
	return out, found
}

func totalCount(pages []recommendations.Page) int {
	if len(pages) == 0 {
		return 0
	}
	return pages[0].Pagination.TotalItems
}

func hasNextPage(pages []recommendations.Page) (string, bool) {
	if len(pages) == 0 {
		return "", false
	}
	return pages[len(pages)-1].NextCursor()
}
