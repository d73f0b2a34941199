package model

// Level is one step of the rank ladder.  The ladder is an ordered
// sequence with strictly increasing level numbers and XP thresholds,
// starting at (1, 0), which together define a step function from XP
// to level.
//
// Fields:
//  Number     – rank number, strictly increasing from 1.
//  XPRequired – minimum XP needed to hold this rank.
//  Title      – display title shown next to the username.
//  Color      – hex color used by clients when rendering the title.
type Level struct {
	Number     int    `json:"level_number"` // levels.level_number
	XPRequired int64  `json:"xp_required"`  // levels.xp_required
	Title      string `json:"title"`        // levels.title
	Color      string `json:"color"`        // levels.color
}
