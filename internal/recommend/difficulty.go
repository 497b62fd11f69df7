package recommend

import "github.com/campusworks/advisor-backend/internal/types"

// DifficultyFromHours derives a difficulty label from a course's
// weekly hour commitment. Courses without a declared commitment are
// assumed intermediate.
func DifficultyFromHours(weeklyHours *int) types.Level {
	if weeklyHours == nil {
		return types.LevelIntermediate
	}
	switch h := *weeklyHours; {
	case h < 4:
		return types.LevelBeginner
	case h < 8:
		return types.LevelIntermediate
	case h < 12:
		return types.LevelAdvanced
	default:
		return types.LevelExpert
	}
}
