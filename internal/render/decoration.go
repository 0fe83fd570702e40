package render

import (
	"github.com/thiagokokada/gitfs-go/internal/status"
)

type Style uint8

const (
	StyleNormal Style = iota
	StyleItalic
)

type Colour string

const (
	Black     Colour = "black"
	Blue      Colour = "blue"
	Red       Colour = "red"
	DarkGreen Colour = "darkgreen"
	Pink      Colour = "pink"
	Green     Colour = "green"
	Magenta   Colour = "magenta"
	Cyan      Colour = "cyan"
	Grey      Colour = "grey"
)

type decoration struct {
	style  Style
	colour Colour
}

var decorations = map[status.Code]decoration{
	status.NoStatus:            {StyleNormal, Black},
	status.Unmodified:          {StyleNormal, Black},
	status.WDOnlyModified:      {StyleNormal, Blue},
	status.WDOnlyDeleted:       {StyleNormal, Red},
	status.Modified:            {StyleNormal, Blue},
	status.ModifiedModified:    {StyleNormal, Blue},
	status.ModifiedDeleted:     {StyleNormal, Red},
	status.Added:               {StyleNormal, DarkGreen},
	status.AddedModified:       {StyleNormal, Blue},
	status.AddedDeleted:        {StyleNormal, Red},
	status.Deleted:             {StyleNormal, Red},
	status.DeletedModified:     {StyleNormal, Blue},
	status.Renamed:             {StyleItalic, Pink},
	status.RenamedModified:     {StyleItalic, Blue},
	status.RenamedDeleted:      {StyleItalic, Red},
	status.Copied:              {StyleItalic, Green},
	status.CopiedModified:      {StyleItalic, Blue},
	status.CopiedDeleted:       {StyleItalic, Red},
	status.Unmerged:            {StyleNormal, Magenta},
	status.UnmergedAdded:       {StyleNormal, Magenta},
	status.UnmergedAddedUs:     {StyleNormal, Magenta},
	status.UnmergedAddedThem:   {StyleNormal, Magenta},
	status.UnmergedDeleted:     {StyleNormal, Magenta},
	status.UnmergedDeletedUs:   {StyleNormal, Magenta},
	status.UnmergedDeletedThem: {StyleNormal, Magenta},
	status.NotTracked:          {StyleItalic, Cyan},
	status.Ignored:             {StyleItalic, Grey},
}

// Decoration returns how an entry with code should be drawn.
func Decoration(code status.Code) (Style, Colour) {
	d, ok := decorations[code]
	if !ok {
		return StyleNormal, Black
	}
	return d.style, d.colour
}
