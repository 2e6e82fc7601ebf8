// Package catalog holds the static list of purchasable services.
package catalog

import "freelance-checkout-system/models"

// Base prices are in INR.
var services = []models.Service{
	{
		ID:                "SVC-WEB-DEV",
		Title:             "Web Development",
		BasePrice:         999,
		RequiresResume:    false,
		RequiresDocuments: false,
		RatingDisplay:     "4.9 (2.1k)",
	},
	{
		ID:                "SVC-RESUME",
		Title:             "Resume Writing",
		BasePrice:         499,
		RequiresResume:    true,
		RequiresDocuments: false,
		RatingDisplay:     "4.8 (1.4k)",
	},
	{
		ID:                "SVC-VISA-DOCS",
		Title:             "Visa Documentation",
		BasePrice:         1499,
		RequiresResume:    false,
		RequiresDocuments: true,
		RatingDisplay:     "4.7 (860)",
	},
	{
		ID:                "SVC-JOB-APPLY",
		Title:             "Job Application Assist",
		BasePrice:         799,
		RequiresResume:    true,
		RequiresDocuments: true,
		RatingDisplay:     "4.8 (980)",
	},
}

// List returns the purchasable services. The returned slice is a copy so
// callers cannot mutate the catalog.
func List() []models.Service {
	out := make([]models.Service, len(services))
	copy(out, services)
	return out
}

// ByID looks up a single service. The second return is false when the id is
// unknown.
func ByID(id string) (models.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}
