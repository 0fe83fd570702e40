package status

// Code is one of the two-character status codes reported by
// "git status --porcelain", plus NoStatus for paths git said nothing about.
type Code uint8

const (
	NoStatus Code = iota
	Unmodified
	WDOnlyModified
	WDOnlyDeleted
	Modified
	ModifiedModified
	ModifiedDeleted
	Added
	AddedModified
	AddedDeleted
	Deleted
	DeletedModified
	Renamed
	RenamedModified
	RenamedDeleted
	Copied
	CopiedModified
	CopiedDeleted
	Unmerged
	UnmergedAdded
	UnmergedAddedUs
	UnmergedAddedThem
	UnmergedDeleted
	UnmergedDeletedUs
	UnmergedDeletedThem
	NotTracked
	Ignored

	numCodes
)

var codeText = [numCodes]string{
	NoStatus:            "",
	Unmodified:          "  ",
	WDOnlyModified:      " M",
	WDOnlyDeleted:       " D",
	Modified:            "M ",
	ModifiedModified:    "MM",
	ModifiedDeleted:     "MD",
	Added:               "A ",
	AddedModified:       "AM",
	AddedDeleted:        "AD",
	Deleted:             "D ",
	DeletedModified:     "DM",
	Renamed:             "R ",
	RenamedModified:     "RM",
	RenamedDeleted:      "RD",
	Copied:              "C ",
	CopiedModified:      "CM",
	CopiedDeleted:       "CD",
	Unmerged:            "UU",
	UnmergedAdded:       "AA",
	UnmergedAddedUs:     "AU",
	UnmergedAddedThem:   "UA",
	UnmergedDeleted:     "DD",
	UnmergedDeletedUs:   "DU",
	UnmergedDeletedThem: "DA",
	NotTracked:          "??",
	Ignored:             "!!",
}

var codeByText = func() map[string]Code {
	m := make(map[string]Code, numCodes)
	for _, c := range All() {
		m[codeText[c]] = c
	}
	return m
}()

// String returns the code exactly as git prints it.
func (c Code) String() string {
	if c >= numCodes {
		return ""
	}
	return codeText[c]
}

// Parse maps a verbatim two-character code to its Code. The empty string
// maps to NoStatus; anything outside the lexicon is rejected.
func Parse(raw string) (Code, bool) {
	c, ok := codeByText[raw]
	return c, ok
}

// All returns every code in declaration order.
func All() []Code {
	out := make([]Code, 0, numCodes)
	for c := NoStatus; c < numCodes; c++ {
		out = append(out, c)
	}
	return out
}
