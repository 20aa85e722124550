package constants

import "strings"

var organizations = []string{"HOGARDEN", "TAL", "MTM", "PALO DE ROSA", "DOMESKA", "TOLEXAL"}

// Organizations returns the organizations labels are printed for.
func Organizations() []string {
	out := make([]string, len(organizations))
	copy(out, organizations)
	return out
}

// NormalizeOrganization trims and upper-cases an organization name and reports
// whether it is one of the known organizations.
func NormalizeOrganization(name string) (string, bool) {
	n := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	for _, o := range organizations {
		if n == o {
			return n, true
		}
	}
	return n, false
}
