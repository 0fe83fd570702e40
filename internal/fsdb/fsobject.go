package fsdb

import (
	"strings"

	"github.com/thiagokokada/gitfs-go/internal/porcelain"
	"github.com/thiagokokada/gitfs-go/internal/status"
)

// RelatedFile links an entry to the other side of a rename or copy.
type RelatedFile = porcelain.Related

// FsObject is one row of a directory listing.
type FsObject struct {
	Name string
	Path string
	// Status is the entry's own code for files and the roll-up for
	// directories. CleanStatus is only meaningful for directories.
	Status      status.Code
	CleanStatus status.Code
	Related     *RelatedFile
	IsDir       bool
}

func (o FsObject) hidden() bool {
	if strings.HasPrefix(o.Name, ".") {
		if o.IsDir {
			return !status.SignificantSet.Has(o.Status) && !status.SignificantSet.Has(o.CleanStatus)
		}
		return !status.SignificantSet.Has(o.Status)
	}
	return o.Status == status.Ignored
}

func (o FsObject) clean() bool {
	if o.IsDir {
		return status.CleanSet.Has(o.Status) && !status.SignificantSet.Has(o.CleanStatus)
	}
	return status.CleanSet.Has(o.Status)
}

// IsVisible reports whether the object belongs in a listing filtered with
// the given flags. Dot-files stay visible while they carry a significant
// status; ignored entries are hidden unless showHidden is set.
func (o FsObject) IsVisible(showHidden, hideClean bool) bool {
	return (showHidden || !o.hidden()) && (!hideClean || !o.clean())
}

func filterVisible(objs []FsObject, showHidden, hideClean bool) []FsObject {
	out := make([]FsObject, 0, len(objs))
	for _, o := range objs {
		if o.IsVisible(showHidden, hideClean) {
			out = append(out, o)
		}
	}
	return out
}
