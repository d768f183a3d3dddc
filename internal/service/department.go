package service

import "strings"

// departmentSynonyms maps lowercase department phrases to their canonical
// names. Input that misses the table passes through title-cased rather than
// being rejected.
var departmentSynonyms = map[string]string{
	"dentist":           "Dentistry",
	"dentistry":         "Dentistry",
	"dental":            "Dentistry",
	"cardiology":        "Cardiology",
	"cardiologist":      "Cardiology",
	"dermatology":       "Dermatology",
	"dermatologist":     "Dermatology",
	"ent":               "ENT",
	"orthopedics":       "Orthopedics",
	"orthopaedics":      "Orthopedics",
	"physiotherapy":     "Physiotherapy",
	"pediatrician":      "Pediatrics",
	"paediatrician":     "Pediatrics",
	"pediatrics":        "Pediatrics",
	"general physician": "General Medicine",
	"physician":         "General Medicine",
	"gp":                "General Medicine",
}

// MapDepartment resolves a free-form department phrase to a canonical
// department name. "Unknown" is reserved strictly for empty input.
func MapDepartment(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "Unknown"
	}
	key := strings.TrimRight(strings.ToLower(raw), ".")
	if canonical, ok := departmentSynonyms[key]; ok {
		return canonical
	}
	return titleCase(raw)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
