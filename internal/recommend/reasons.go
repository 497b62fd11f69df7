package recommend

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/campusworks/advisor-backend/internal/types"
)

//go:embed reasons.yaml
var reasonsYAML []byte

type subjectBlurb struct {
	Skills  string `yaml:"skills"`
	Project string `yaml:"project"`
}

type reasonTables struct {
	Subjects map[string]subjectBlurb `yaml:"subjects"`
}

var (
	reasonsOnce sync.Once
	reasons     reasonTables
)

func loadReasonTables() reasonTables {
	reasonsOnce.Do(func() {
		if err := yaml.Unmarshal(reasonsYAML, &reasons); err != nil {
			// The table ships with the binary; a parse failure is a
			// build defect, not a runtime condition.
			panic(fmt.Sprintf("recommend: bad reasons.yaml: %v", err))
		}
	})
	return reasons
}

// SynthesizeReasons builds the deterministic reason list used by the
// fallback selector: subject skills and project blurbs, a career
// alignment sentence, an effort sentence from weekly hours, and an
// early-registration nudge for scarce courses.
func SynthesizeReasons(course *types.Course, student *types.StudentProfile, availability float64) []string {
	tables := loadReasonTables()
	var out []string

	if blurb, ok := tables.Subjects[course.Subject]; ok {
		if blurb.Skills != "" {
			out = append(out, fmt.Sprintf("Builds practical skills in %s", blurb.Skills))
		}
		if blurb.Project != "" {
			out = append(out, fmt.Sprintf("You will complete %s", blurb.Project))
		}
	} else {
		out = append(out, fmt.Sprintf("Strengthens your foundation in %s", course.Subject))
	}

	careerTitle := CareerTitle(student.CareerGoal)
	if containsFold(types.StringList(course.CareerPaths), careerTitle) {
		out = append(out, fmt.Sprintf("Required for the %s path", careerTitle))
	} else {
		out = append(out, fmt.Sprintf("A useful elective alongside your %s goal", careerTitle))
	}

	difficulty := DifficultyFromHours(course.WeeklyHours)
	if course.WeeklyHours != nil {
		out = append(out, fmt.Sprintf("Plan for about %d hours per week (%s)", *course.WeeklyHours, difficulty))
	} else {
		out = append(out, fmt.Sprintf("Expect a typical %s workload", difficulty))
	}

	if availability < 0.5 {
		out = append(out, "Seats fill quickly; register early")
	}

	return out
}
