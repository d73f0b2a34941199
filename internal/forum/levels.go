package forum

import (
	"sort"

	"github.com/blackhouse/forum/internal/model"
)

// DefaultLevels returns the rank ladder.  Thresholds double from
// level 5 onward; level 1 starts at zero so every XP value maps to
// some level.
func DefaultLevels() []model.Level {
	return []model.Level{
		{Number: 1, XPRequired: 0, Title: "Newbie", Color: "#808080"},
		{Number: 2, XPRequired: 100, Title: "Beginner", Color: "#4CAF50"},
		{Number: 3, XPRequired: 250, Title: "Member", Color: "#2196F3"},
		{Number: 4, XPRequired: 500, Title: "Regular", Color: "#9C27B0"},
		{Number: 5, XPRequired: 1000, Title: "Active", Color: "#FF9800"},
		{Number: 6, XPRequired: 2000, Title: "Veteran", Color: "#E91E63"},
		{Number: 7, XPRequired: 4000, Title: "Elite", Color: "#00BCD4"},
		{Number: 8, XPRequired: 8000, Title: "Champion", Color: "#FFEB3B"},
		{Number: 9, XPRequired: 16000, Title: "Legend", Color: "#F44336"},
		{Number: 10, XPRequired: 32000, Title: "Grandmaster", Color: "#FFD700"},
	}
}

// LevelTable answers "which level does this much XP buy" over an
// immutable, ascending ladder.  Lookups never mutate the table, so a
// single instance is safe to share across concurrent requests.
type LevelTable struct {
	levels []model.Level
}

// NewLevelTable copies and sorts the given ladder by XP threshold.
// The copy keeps callers from mutating the table underneath us.
func NewLevelTable(levels []model.Level) *LevelTable {
	ls := make([]model.Level, len(levels))
	copy(ls, levels)
	sort.Slice(ls, func(i, j int) bool { return ls[i].XPRequired < ls[j].XPRequired })
	return &LevelTable{levels: ls}
}

// LevelForXP returns the level with the largest threshold not
// exceeding xp.  If no entry qualifies it falls back to the first
// level of the ladder.
func (t *LevelTable) LevelForXP(xp int64) model.Level {
	// First entry whose threshold exceeds xp; the answer is the one
	// before it.
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i].XPRequired > xp })
	if i == 0 {
		return t.levels[0]
	}
	return t.levels[i-1]
}

// Levels returns a copy of the ladder for display purposes.
func (t *LevelTable) Levels() []model.Level {
	ls := make([]model.Level, len(t.levels))
	copy(ls, t.levels)
	return ls
}
