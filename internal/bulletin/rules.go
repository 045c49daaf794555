package bulletin

// Rules holds the markers and sentinel phrases the extractor keys on. They
// reflect the authoring conventions of one site and are passed in rather than
// hard-coded so callers can tune them per layout.
type Rules struct {
	// AnchorMarker in a comment opens the bulletin region.
	AnchorMarker string
	// EndMarker in a comment closes it.
	EndMarker string
	// LegacySeparator in a comment (without AnchorMarker) also closes it.
	LegacySeparator string

	// StopTags are containers that begin page furniture.
	StopTags []string
	// SignatureTag with SignatureColor marks the closing signature block.
	SignatureTag   string
	SignatureColor string
	// SeparatorTags split bulletins.
	SeparatorTags []string

	// MinLength is the exclusive lower bound, in characters, of a kept bulletin.
	MinLength int
	// CommentOpen rejects fragments that are a leaked comment.
	CommentOpen string

	// DecommissionNotice is the legacy footer sentence; seeing it halts extraction.
	DecommissionNotice string
	// SpamDomains drop a bulletin without halting.
	SpamDomains []string
	// WeatherPrefixes and WeatherPhrases detect the weather report that
	// follows the last bulletin. Both are matched lower-cased.
	WeatherPrefixes []string
	WeatherPhrases  []string
}

// DefaultRules returns the rules for the comment-delimited page layout.
func DefaultRules() Rules {
	return Rules{
		AnchorMarker:    "odsud",
		EndMarker:       "konec",
		LegacySeparator: "xxxxxxxx",

		StopTags:       []string{"table", "div"},
		SignatureTag:   "font",
		SignatureColor: "navy",
		SeparatorTags:  []string{"li", "br", "p", "ul", "ol", "hr"},

		MinLength:   5,
		CommentOpen: "<!--",

		DecommissionNotice: "Pokud vám nějaká zpráva přijde debilní",
		SpamDomains:        []string{"facebook.com", "digineff.cz"},
		WeatherPrefixes: []string{
			"počasí", "u nás", "mrazy", "slunečn", "zataženo",
			"oblačno", "jasno", "dnes", "čeká se", "ráno lilo",
		},
		WeatherPhrases: []string{"počasí v praze", "počasí praha"},
	}
}
