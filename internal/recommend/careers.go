package recommend

import "strings"

// careerTitles resolves a stored career-goal key to the display title
// used in course career-path lists and reason text.
var careerTitles = map[string]string{
	"software_engineer":      "Software Engineer",
	"data_scientist":         "Data Scientist",
	"data_engineer":          "Data Engineer",
	"ml_engineer":            "Machine Learning Engineer",
	"web_developer":          "Web Developer",
	"mobile_developer":       "Mobile Developer",
	"security_analyst":       "Security Analyst",
	"cloud_architect":        "Cloud Architect",
	"devops_engineer":        "DevOps Engineer",
	"product_manager":        "Product Manager",
	"ux_designer":            "UX Designer",
	"database_administrator": "Database Administrator",
}

// CareerTitle resolves a career-goal key. Unknown keys fall back to a
// title-cased rendering of the key so scoring still has something to
// match against.
func CareerTitle(key string) string {
	if title, ok := careerTitles[strings.ToLower(strings.TrimSpace(key))]; ok {
		return title
	}
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
