package calendar

import "sort"

// RootPath is used for years missing from the archive map.
const RootPath = "/"

// ArchiveMap maps a calendar year to the index page that links its daily pages.
type ArchiveMap map[int]string

// DefaultArchiveMap lists the index pages of the site as of the 2026 layout.
// Several early years share one index page.
func DefaultArchiveMap() ArchiveMap {
	return ArchiveMap{
		2026: "/",
		2025: "/inc/archiv20.htm",
		2024: "/inc/archiv19.htm",
		2023: "/inc/archiv18.htm",
		2022: "/inc/archiv17.htm",
		2021: "/inc/archiv16.htm",
		2020: "/inc/archiv15.htm",
		2019: "/inc/archiv14.htm",
		2018: "/inc/archiv13.htm",
		2017: "/inc/archiv12.htm",
		2016: "/archiv11.htm",
		2015: "/archiv10.htm",
		2014: "/archiv9.htm",
		2013: "/archiv8.htm",
		2012: "/archiv7.htm",
		2011: "/archiv6.htm",
		2010: "/archiv5.html",
		2009: "/archiv4.html",
		2008: "/archiv3.html",
		2007: "/archiv2.html",
		2006: "/archiv2.html",
		2005: "/archiv1.html",
		2004: "/archiv1.html",
		2003: "/archiv1.html",
	}
}

// IndexPath returns the index page for year, falling back to RootPath.
func (m ArchiveMap) IndexPath(year int) string {
	if p, ok := m[year]; ok && p != "" {
		return p
	}
	return RootPath
}

// Has reports whether year has an explicit entry.
func (m ArchiveMap) Has(year int) bool {
	_, ok := m[year]
	return ok
}

// Years returns all mapped years in ascending order.
func (m ArchiveMap) Years() []int {
	out := make([]int, 0, len(m))
	for y := range m {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
