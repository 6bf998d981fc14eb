package levels

import (
	"time"

	"github.com/fitglide/fitglide/internal/achievements"
	"github.com/samber/lo"
)

// Level is a tier definition plus its progress state. Achievements is the
// catalog subset counting toward this tier, annotated with unlock state; it
// is rebuilt on every UpdateProgress and never persisted.
type Level struct {
	ID                   int                        `json:"id"`
	Name                 string                     `json:"name"`
	LocalizedName        string                     `json:"localizedName"`
	Description          string                     `json:"description"`
	RequiredAchievements int                        `json:"requiredAchievements"`
	FitCoinsReward       int                        `json:"fitCoinsReward"`
	IsUnlocked           bool                       `json:"isUnlocked"`
	UnlockedDate         *time.Time                 `json:"unlockedDate,omitempty"`
	Achievements         []achievements.Achievement `json:"achievements,omitempty"`
}

// UnlockedCount is the number of annotated member achievements that are unlocked.
func (l Level) UnlockedCount() int {
	return lo.CountBy(l.Achievements, func(a achievements.Achievement) bool {
		return a.IsUnlocked
	})
}

func (l Level) Clone() Level {
	out := l
	if l.UnlockedDate != nil {
		d := *l.UnlockedDate
		out.UnlockedDate = &d
	}
	out.Achievements = lo.Map(l.Achievements, func(a achievements.Achievement, _ int) achievements.Achievement {
		return a.Clone()
	})
	return out
}

var definitions = []Level{
	{ID: 1, Name: "Newbie", LocalizedName: "Naya Yatri", Description: "Every journey starts with a single step", RequiredAchievements: 0, FitCoinsReward: 0, IsUnlocked: true},
	{ID: 2, Name: "Explorer", LocalizedName: "Khojkarta", Description: "You are finding your rhythm", RequiredAchievements: 3, FitCoinsReward: 100},
	{ID: 3, Name: "Achiever", LocalizedName: "Safal", Description: "Consistency is paying off", RequiredAchievements: 4, FitCoinsReward: 250},
	{ID: 4, Name: "Champion", LocalizedName: "Vijeta", Description: "Others look to you for inspiration", RequiredAchievements: 4, FitCoinsReward: 500},
	{ID: 5, Name: "Legend", LocalizedName: "Mahaan", Description: "The very top of FitGlide", RequiredAchievements: 5, FitCoinsReward: 1000},
}

// Definitions returns the tier catalog in ascending id order, in its
// initial state.
func Definitions() []Level {
	return lo.Map(definitions, func(l Level, _ int) Level {
		return l.Clone()
	})
}
