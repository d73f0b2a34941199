package forum

import "github.com/blackhouse/forum/internal/model"

// CatalogEntry pairs an achievement definition with its trigger
// predicate.  Qualifies is evaluated against the user's current
// counters and level; a nil predicate means the achievement has no
// automatic trigger and is only ever granted by an explicit path.
type CatalogEntry struct {
	model.Achievement
	Qualifies func(u *model.User) bool
}

// DefaultCatalog returns the built-in achievement set.  Entries are
// keyed by stable ID; display names are presentation only and never
// drive dispatch.
//
// "Helpful Hand" and "Perfect 10" carry no predicate: the original
// system defines them in the catalog but has no evaluated trigger
// for either, and we deliberately do not invent one.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Achievement: model.Achievement{ID: "first_post", Name: "First Post", Description: "Create your first message", Icon: "📝", XPReward: 10, Category: "activity"},
			Qualifies:   func(u *model.User) bool { return u.MessagesCount >= 1 },
		},
		{
			Achievement: model.Achievement{ID: "topic_starter", Name: "Topic Starter", Description: "Create your first topic", Icon: "🌟", XPReward: 20, Category: "activity"},
			Qualifies:   func(u *model.User) bool { return u.TopicsCount >= 1 },
		},
		{
			Achievement: model.Achievement{ID: "social_butterfly", Name: "Social Butterfly", Description: "Reach 50 messages", Icon: "🦋", XPReward: 50, Category: "social"},
			Qualifies:   func(u *model.User) bool { return u.MessagesCount >= 50 },
		},
		{
			Achievement: model.Achievement{ID: "conversation_starter", Name: "Conversation Starter", Description: "Create 10 topics", Icon: "💡", XPReward: 100, Category: "activity"},
			Qualifies:   func(u *model.User) bool { return u.TopicsCount >= 10 },
		},
		{
			Achievement: model.Achievement{ID: "helpful_hand", Name: "Helpful Hand", Description: "Have your answer marked as solution", Icon: "✅", XPReward: 30, Category: "community"},
		},
		{
			Achievement: model.Achievement{ID: "rising_star", Name: "Rising Star", Description: "Reach level 5", Icon: "⭐", XPReward: 100, Category: "progression"},
			Qualifies:   func(u *model.User) bool { return u.Level >= 5 },
		},
		{
			Achievement: model.Achievement{ID: "veteran", Name: "Veteran", Description: "Reach level 10", Icon: "🏆", XPReward: 500, Category: "progression"},
			Qualifies:   func(u *model.User) bool { return u.Level >= 10 },
		},
		{
			Achievement: model.Achievement{ID: "perfect_10", Name: "Perfect 10", Description: "Earn 10 achievements", Icon: "🎯", XPReward: 200, Category: "achievement"},
		},
	}
}

// Catalog is the immutable achievement catalog, loaded once at
// process start.
type Catalog struct {
	entries []CatalogEntry
	byID    map[string]CatalogEntry
}

// NewCatalog builds a catalog from the given entries.
func NewCatalog(entries []CatalogEntry) *Catalog {
	es := make([]CatalogEntry, len(entries))
	copy(es, entries)
	byID := make(map[string]CatalogEntry, len(es))
	for _, e := range es {
		byID[e.ID] = e
	}
	return &Catalog{entries: es, byID: byID}
}

// ByID returns the entry for the given stable ID.
func (c *Catalog) ByID(id string) (CatalogEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Entries returns the catalog in definition order.
func (c *Catalog) Entries() []CatalogEntry {
	es := make([]CatalogEntry, len(c.entries))
	copy(es, c.entries)
	return es
}
