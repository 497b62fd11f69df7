package types

import "strings"

// Level is the shared ordinal scale for course difficulty and
// student proficiency.
type Level int

const (
	LevelUnknown Level = iota
	LevelBeginner
	LevelIntermediate
	LevelAdvanced
	LevelExpert
)

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelIntermediate:
		return "intermediate"
	case LevelAdvanced:
		return "advanced"
	case LevelExpert:
		return "expert"
	default:
		return "unknown"
	}
}

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner
	case "intermediate":
		return LevelIntermediate
	case "advanced":
		return LevelAdvanced
	case "expert":
		return LevelExpert
	default:
		return LevelUnknown
	}
}

// Time-of-day preference keys shared by students and courses.
const (
	TimePrefMorning      = "morning"
	TimePrefAfternoon    = "afternoon"
	TimePrefEvening      = "evening"
	TimePrefNoPreference = "no_preference"
)
