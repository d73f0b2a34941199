package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	table := NewLevelTable(DefaultLevels())

	cases := []struct {
		xp    int64
		level int
		title string
	}{
		{0, 1, "Newbie"},
		{99, 1, "Newbie"},
		{100, 2, "Beginner"},
		{249, 2, "Beginner"},
		{250, 3, "Member"},
		{500, 4, "Regular"},
		{999, 4, "Regular"},
		{1000, 5, "Active"},
		{2000, 6, "Veteran"},
		{4000, 7, "Elite"},
		{8000, 8, "Champion"},
		{16000, 9, "Legend"},
		{31999, 9, "Legend"},
		{32000, 10, "Grandmaster"},
		{999999, 10, "Grandmaster"},
	}
	for _, c := range cases {
		got := table.LevelForXP(c.xp)
		assert.Equal(t, c.level, got.Number, "xp=%d", c.xp)
		assert.Equal(t, c.title, got.Title, "xp=%d", c.xp)
	}
}

func TestLevelForXP_NegativeFallsBackToFirst(t *testing.T) {
	table := NewLevelTable(DefaultLevels())
	assert.Equal(t, 1, table.LevelForXP(-1).Number)
}

func TestNewLevelTable_SortsAndCopies(t *testing.T) {
	levels := DefaultLevels()
	// Shuffle the input order; the table must not depend on it.
	levels[0], levels[9] = levels[9], levels[0]
	table := NewLevelTable(levels)

	got := table.Levels()
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].XPRequired, got[i].XPRequired)
	}

	// Mutating the returned copy must not affect the table.
	got[0].XPRequired = 12345
	assert.Equal(t, int64(0), table.Levels()[0].XPRequired)
}

func TestDefaultCatalog_StableIDs(t *testing.T) {
	cat := NewCatalog(DefaultCatalog())

	wantRewards := map[string]int64{
		"first_post":           10,
		"topic_starter":        20,
		"social_butterfly":     50,
		"conversation_starter": 100,
		"helpful_hand":         30,
		"rising_star":          100,
		"veteran":              500,
		"perfect_10":           200,
	}
	require.Len(t, cat.Entries(), len(wantRewards))
	for id, reward := range wantRewards {
		entry, ok := cat.ByID(id)
		require.True(t, ok, "missing %s", id)
		assert.Equal(t, reward, entry.XPReward, id)
	}

	// No automatic trigger for these two.
	hh, _ := cat.ByID("helpful_hand")
	assert.Nil(t, hh.Qualifies)
	p10, _ := cat.ByID("perfect_10")
	assert.Nil(t, p10.Qualifies)
}
