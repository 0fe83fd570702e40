package status

import (
	"strconv"
	"strings"
)

// modifiedList is the preference order for directory decoration based on
// the states of the directory's contents. The first entry found wins.
var modifiedList = []Code{
	WDOnlyModified, WDOnlyDeleted,
	ModifiedModified, ModifiedDeleted,
	AddedModified, AddedDeleted,
	DeletedModified,
	RenamedModified, RenamedDeleted,
	CopiedModified, CopiedDeleted,
	Unmerged,
	UnmergedAdded, UnmergedAddedUs, UnmergedAddedThem,
	UnmergedDeleted, UnmergedDeletedUs, UnmergedDeletedThem,
	Modified, Added, Deleted, Renamed, Copied,
}

var (
	// CleanSet holds the codes with nothing left to do in the working tree.
	CleanSet = NewSet(Unmodified, Modified, Added, Deleted, Renamed, Copied, Ignored, NoStatus)

	// SignificantSet holds the codes that keep an entry visible even when
	// its name would otherwise hide it.
	SignificantSet = NewSet(append(append([]Code{}, modifiedList...), NotTracked)...)

	// OrderedDirStatusList picks the decoration of a directory.
	OrderedDirStatusList = append(append([]Code{}, modifiedList...), NotTracked)

	// OrderedDirCleanStatusList picks the best status that is not clean;
	// it decides whether a directory counts as clean.
	OrderedDirCleanStatusList = func() []Code {
		var out []Code
		for _, c := range modifiedList {
			if !CleanSet.Has(c) {
				out = append(out, c)
			}
		}
		return append(out, NotTracked)
	}()
)

// Set is a small bitset of codes.
type Set uint32

func NewSet(codes ...Code) Set {
	var s Set
	for _, c := range codes {
		s = s.Add(c)
	}
	return s
}

func (s Set) Add(c Code) Set {
	if c >= numCodes {
		return s
	}
	return s | 1<<c
}

func (s Set) Has(c Code) bool {
	return c < numCodes && s&(1<<c) != 0
}

// Codes returns the members of s in declaration order.
func (s Set) Codes() []Code {
	var out []Code
	for c := NoStatus; c < numCodes; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String lists the members as quoted codes, e.g. [" M" "??"].
func (s Set) String() string {
	codes := s.Codes()
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Quote(c.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FirstInSet returns the earliest code of list that is a member of set.
// When none is, it falls back to Ignored if ignored reports true and to
// NoStatus otherwise. A nil ignored skips the ignore check.
func FirstInSet(list []Code, set Set, ignored func() bool) Code {
	for _, c := range list {
		if set.Has(c) {
			return c
		}
	}
	if ignored != nil && ignored() {
		return Ignored
	}
	return NoStatus
}

// Rollup computes a directory's decoration and clean status from the codes
// of everything below it.
func Rollup(set Set, ignored func() bool) (dirStatus, cleanStatus Code) {
	var once, result bool
	check := func() bool {
		if ignored == nil {
			return false
		}
		if !once {
			once = true
			result = ignored()
		}
		return result
	}
	return FirstInSet(OrderedDirStatusList, set, check), FirstInSet(OrderedDirCleanStatusList, set, check)
}
