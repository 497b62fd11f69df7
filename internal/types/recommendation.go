package types

import "time"

// MaxRecommendations bounds the size of a recommendation set.
const MaxRecommendations = 3

// Sources for a recommendation set.
const (
	SourceOracle   = "oracle"
	SourceFallback = "fallback"
	SourceProposed = "proposed"
)

// Occupancy labels derived from availability for display.
const (
	OccupancyLow    = "low"
	OccupancyMedium = "medium"
	OccupancyHigh   = "high"
)

// ScoredCourse is one recommended course with locally derived fields.
// Difficulty and availability are always recomputed by the engine;
// they are never taken from an external proposer.
type ScoredCourse struct {
	CourseCode   string   `json:"course_code"`
	Title        string   `json:"title"`
	Subject      string   `json:"subject"`
	Credits      int      `json:"credits"`
	MatchScore   float64  `json:"match_score"`
	Reasons      []string `json:"reasons"`
	Difficulty   string   `json:"difficulty"`
	Availability float64  `json:"availability"`
	Occupancy    string   `json:"occupancy"`
	Schedule     string   `json:"schedule,omitempty"`
}

// RecommendationSet is the durable, externally visible result of one
// recommendation computation. Degraded marks the conflict relaxation
// taken when the catalog cannot supply enough conflict-free courses.
type RecommendationSet struct {
	StudentID   string         `json:"student_id"`
	Courses     []ScoredCourse `json:"courses"`
	Source      string         `json:"source"`
	Degraded    bool           `json:"degraded,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}
