package achievements

import (
	"time"
)

// Category groups achievements for display and filtering
type Category string

const (
	CategoryFitness   Category = "fitness"
	CategoryNutrition Category = "nutrition"
	CategorySocial    Category = "social"
	CategoryStreak    Category = "streak"
	CategoryMilestone Category = "milestone"
	CategoryWellness  Category = "wellness"
	CategoryChallenge Category = "challenge"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryFitness,
	CategoryNutrition,
	CategorySocial,
	CategoryStreak,
	CategoryMilestone,
	CategoryWellness,
	CategoryChallenge,
}

// Metric is the upstream measurement an achievement is checked against
type Metric string

const (
	MetricSteps       Metric = "steps"
	MetricStreakDays  Metric = "streak_days"
	MetricMealsLogged Metric = "meals_logged"
	MetricWeightLoss  Metric = "weight_loss_kg"
	MetricFriends     Metric = "friends"
	MetricPacksJoined Metric = "packs_joined"
	MetricChallenges  Metric = "challenges_completed"
	MetricSleepHours  Metric = "sleep_hours"
	MetricWaterLiters Metric = "water_liters"
	MetricOnboarding  Metric = "onboarding"
)

// Metrics lists every metric accepted by CheckMetric
var Metrics = []Metric{
	MetricSteps,
	MetricStreakDays,
	MetricMealsLogged,
	MetricWeightLoss,
	MetricFriends,
	MetricPacksJoined,
	MetricChallenges,
	MetricSleepHours,
	MetricWaterLiters,
	MetricOnboarding,
}

// Achievement is a catalog definition plus its unlock state.
type Achievement struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Icon            string     `json:"icon"`
	Category        Category   `json:"category"`
	Metric          Metric     `json:"metric"`
	Target          *float64   `json:"target,omitempty"`
	UnlockCondition string     `json:"unlockCondition"`
	Level           int        `json:"level"`
	FitCoinsReward  int        `json:"fitCoinsReward"`
	IsUnlocked      bool       `json:"isUnlocked"`
	UnlockedDate    *time.Time `json:"unlockedDate,omitempty"`
}

// TargetValue returns the unlock threshold; a missing target is 0, which
// makes the achievement unlock on its first check.
func (a Achievement) TargetValue() float64 {
	if a.Target == nil {
		return 0
	}
	return *a.Target
}

// Clone returns a copy that shares no pointers with a.
func (a Achievement) Clone() Achievement {
	out := a
	if a.Target != nil {
		t := *a.Target
		out.Target = &t
	}
	if a.UnlockedDate != nil {
		d := *a.UnlockedDate
		out.UnlockedDate = &d
	}
	return out
}

func target(v float64) *float64 {
	return &v
}

// definitions holds the compiled-in catalog. Level assigns each achievement
// to the tier it counts toward.
var definitions = []Achievement{
	// ====== TIER 1 ======
	{ID: "welcome_aboard", Title: "Welcome Aboard", Description: "Finish setting up your FitGlide profile", Icon: "👋", Category: CategoryMilestone, Metric: MetricOnboarding, UnlockCondition: "Complete onboarding", Level: 1, FitCoinsReward: 5},
	{ID: "first_steps", Title: "First Steps", Description: "Walk 1,000 steps in a day", Icon: "👟", Category: CategoryFitness, Metric: MetricSteps, Target: target(1000), UnlockCondition: "1,000 steps in a day", Level: 1, FitCoinsReward: 10},
	{ID: "first_meal", Title: "First Bite", Description: "Log your first meal", Icon: "🥗", Category: CategoryNutrition, Metric: MetricMealsLogged, Target: target(1), UnlockCondition: "Log 1 meal", Level: 1, FitCoinsReward: 10},
	{ID: "first_friend", Title: "Better Together", Description: "Add your first friend", Icon: "🤝", Category: CategorySocial, Metric: MetricFriends, Target: target(1), UnlockCondition: "Add 1 friend", Level: 1, FitCoinsReward: 15},
	{ID: "hydration_starter", Title: "First Sip", Description: "Drink a litre of water in a day", Icon: "💧", Category: CategoryWellness, Metric: MetricWaterLiters, Target: target(1), UnlockCondition: "1 L of water in a day", Level: 1, FitCoinsReward: 10},
	{ID: "good_night", Title: "Good Night", Description: "Sleep 7 hours in one night", Icon: "🌙", Category: CategoryWellness, Metric: MetricSleepHours, Target: target(7), UnlockCondition: "7 hours of sleep", Level: 1, FitCoinsReward: 10},

	// ====== TIER 2 ======
	{ID: "step_master_5k", Title: "Step Master", Description: "Walk 5,000 steps in a day", Icon: "🚶", Category: CategoryFitness, Metric: MetricSteps, Target: target(5000), UnlockCondition: "5,000 steps in a day", Level: 2, FitCoinsReward: 25},
	{ID: "streak_3", Title: "On a Roll", Description: "Keep a 3-day activity streak", Icon: "🔥", Category: CategoryStreak, Metric: MetricStreakDays, Target: target(3), UnlockCondition: "3-day streak", Level: 2, FitCoinsReward: 25},
	{ID: "meal_logger_10", Title: "Meal Logger", Description: "Log 10 meals", Icon: "🍱", Category: CategoryNutrition, Metric: MetricMealsLogged, Target: target(10), UnlockCondition: "Log 10 meals", Level: 2, FitCoinsReward: 25},
	{ID: "weight_loss_1kg", Title: "First Kilo", Description: "Lose your first kilogram", Icon: "⚖️", Category: CategoryFitness, Metric: MetricWeightLoss, Target: target(1), UnlockCondition: "Lose 1 kg", Level: 2, FitCoinsReward: 30},
	{ID: "pack_joiner", Title: "Pack Animal", Description: "Join your first pack", Icon: "🐺", Category: CategorySocial, Metric: MetricPacksJoined, Target: target(1), UnlockCondition: "Join 1 pack", Level: 2, FitCoinsReward: 20},
	{ID: "hydration_hero", Title: "Hydration Hero", Description: "Drink 2.5 litres of water in a day", Icon: "🚰", Category: CategoryWellness, Metric: MetricWaterLiters, Target: target(2.5), UnlockCondition: "2.5 L of water in a day", Level: 2, FitCoinsReward: 20},
	{ID: "well_rested", Title: "Well Rested", Description: "Sleep 8 hours in one night", Icon: "😴", Category: CategoryWellness, Metric: MetricSleepHours, Target: target(8), UnlockCondition: "8 hours of sleep", Level: 2, FitCoinsReward: 20},

	// ====== TIER 3 ======
	{ID: "step_master_10k", Title: "10K Club", Description: "Walk 10,000 steps in a day", Icon: "🏃", Category: CategoryFitness, Metric: MetricSteps, Target: target(10000), UnlockCondition: "10,000 steps in a day", Level: 3, FitCoinsReward: 50},
	{ID: "streak_7", Title: "Week Warrior", Description: "Keep a 7-day activity streak", Icon: "📅", Category: CategoryStreak, Metric: MetricStreakDays, Target: target(7), UnlockCondition: "7-day streak", Level: 3, FitCoinsReward: 50},
	{ID: "meal_logger_50", Title: "Food Diary", Description: "Log 50 meals", Icon: "📔", Category: CategoryNutrition, Metric: MetricMealsLogged, Target: target(50), UnlockCondition: "Log 50 meals", Level: 3, FitCoinsReward: 50},
	{ID: "weight_loss_5kg", Title: "Lighter Already", Description: "Lose 5 kilograms", Icon: "🎈", Category: CategoryFitness, Metric: MetricWeightLoss, Target: target(5), UnlockCondition: "Lose 5 kg", Level: 3, FitCoinsReward: 75},
	{ID: "social_butterfly", Title: "Social Butterfly", Description: "Add 10 friends", Icon: "🦋", Category: CategorySocial, Metric: MetricFriends, Target: target(10), UnlockCondition: "Add 10 friends", Level: 3, FitCoinsReward: 50},
	{ID: "challenge_accepted", Title: "Challenge Accepted", Description: "Complete your first challenge", Icon: "🎯", Category: CategoryChallenge, Metric: MetricChallenges, Target: target(1), UnlockCondition: "Complete 1 challenge", Level: 3, FitCoinsReward: 40},

	// ====== TIER 4 ======
	{ID: "marathon_walker", Title: "Marathon Walker", Description: "Walk 20,000 steps in a day", Icon: "🥾", Category: CategoryFitness, Metric: MetricSteps, Target: target(20000), UnlockCondition: "20,000 steps in a day", Level: 4, FitCoinsReward: 100},
	{ID: "streak_30", Title: "Habit Formed", Description: "Keep a 30-day activity streak", Icon: "🗓️", Category: CategoryStreak, Metric: MetricStreakDays, Target: target(30), UnlockCondition: "30-day streak", Level: 4, FitCoinsReward: 150},
	{ID: "nutrition_pro", Title: "Nutrition Pro", Description: "Log 150 meals", Icon: "🥑", Category: CategoryNutrition, Metric: MetricMealsLogged, Target: target(150), UnlockCondition: "Log 150 meals", Level: 4, FitCoinsReward: 100},
	{ID: "weight_loss_10kg", Title: "Transformation", Description: "Lose 10 kilograms", Icon: "🦾", Category: CategoryFitness, Metric: MetricWeightLoss, Target: target(10), UnlockCondition: "Lose 10 kg", Level: 4, FitCoinsReward: 150},
	{ID: "challenge_champion", Title: "Challenge Champion", Description: "Complete 10 challenges", Icon: "🏆", Category: CategoryChallenge, Metric: MetricChallenges, Target: target(10), UnlockCondition: "Complete 10 challenges", Level: 4, FitCoinsReward: 120},
	{ID: "pack_leader", Title: "Pack Leader", Description: "Join 5 packs", Icon: "🐾", Category: CategorySocial, Metric: MetricPacksJoined, Target: target(5), UnlockCondition: "Join 5 packs", Level: 4, FitCoinsReward: 100},

	// ====== TIER 5 ======
	{ID: "step_legend", Title: "Step Legend", Description: "Walk 50,000 steps in a day", Icon: "🌋", Category: CategoryFitness, Metric: MetricSteps, Target: target(50000), UnlockCondition: "50,000 steps in a day", Level: 5, FitCoinsReward: 250},
	{ID: "streak_100", Title: "Unstoppable", Description: "Keep a 100-day activity streak", Icon: "💯", Category: CategoryStreak, Metric: MetricStreakDays, Target: target(100), UnlockCondition: "100-day streak", Level: 5, FitCoinsReward: 300},
	{ID: "weight_loss_20kg", Title: "New You", Description: "Lose 20 kilograms", Icon: "🌟", Category: CategoryMilestone, Metric: MetricWeightLoss, Target: target(20), UnlockCondition: "Lose 20 kg", Level: 5, FitCoinsReward: 300},
	{ID: "community_icon", Title: "Community Icon", Description: "Add 50 friends", Icon: "👑", Category: CategorySocial, Metric: MetricFriends, Target: target(50), UnlockCondition: "Add 50 friends", Level: 5, FitCoinsReward: 200},
	{ID: "challenge_legend", Title: "Challenge Legend", Description: "Complete 50 challenges", Icon: "🎖️", Category: CategoryChallenge, Metric: MetricChallenges, Target: target(50), UnlockCondition: "Complete 50 challenges", Level: 5, FitCoinsReward: 250},
	{ID: "hydration_legend", Title: "Human Aquifer", Description: "Drink 4 litres of water in a day", Icon: "🌊", Category: CategoryWellness, Metric: MetricWaterLiters, Target: target(4), UnlockCondition: "4 L of water in a day", Level: 5, FitCoinsReward: 200},
}

// Definitions returns a fresh copy of the compiled-in catalog with every
// achievement locked.
func Definitions() []Achievement {
	out := make([]Achievement, len(definitions))
	for i, d := range definitions {
		out[i] = d.Clone()
		out[i].IsUnlocked = false
		out[i].UnlockedDate = nil
	}
	return out
}

// DefinitionByID returns the compiled-in definition for id.
func DefinitionByID(id string) (Achievement, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return Achievement{}, false
}
