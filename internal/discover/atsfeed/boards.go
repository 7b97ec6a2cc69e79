package atsfeed

import (
	"sort"

	"rolescout/internal/discover"
	"rolescout/internal/domain"
)

// Board is one company board to poll, derived from URLs already in the
// ledger. The ledger is the only board source: a company enters the
// rotation once any of its postings has been discovered elsewhere.
type Board struct {
	ATS  domain.ATS
	Slug string
}

var bannedBoards = map[domain.ATS]map[string]struct{}{
	domain.ATSLever:      {"lever": {}, "democorp": {}},
	domain.ATSAshby:      {"ashby": {}, "demo": {}, "democorp": {}},
	domain.ATSGreenhouse: {"democorp": {}, "example": {}},
}

// DeriveBoards extracts the unique (platform, slug) pairs from stored
// URLs, sorted for a stable rotation order, then applies the offset and
// cap window for batch resume.
func DeriveBoards(urls []string, offset, maxCompanies int) []Board {
	seen := map[Board]struct{}{}
	var boards []Board
	for _, u := range urls {
		ats, slug := discover.BoardSlug(u)
		if slug == "" {
			continue
		}
		if _, banned := bannedBoards[ats][slug]; banned {
			continue
		}
		b := Board{ATS: ats, Slug: slug}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		boards = append(boards, b)
	}

	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Slug != boards[j].Slug {
			return boards[i].Slug < boards[j].Slug
		}
		return boards[i].ATS < boards[j].ATS
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(boards) {
		return nil
	}
	boards = boards[offset:]
	if maxCompanies > 0 && len(boards) > maxCompanies {
		boards = boards[:maxCompanies]
	}
	return boards
}
