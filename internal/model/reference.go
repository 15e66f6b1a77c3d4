package model

// Patient is a reference record created at dataset-generation time.
type Patient struct {
	PatientID   string  `json:"patient_id"`
	AgeRange    string  `json:"age_range"`
	Language    string  `json:"language"`
	Caregiver   bool    `json:"caregiver"`
	InsuranceID *string `json:"insurance_id"`
}

// Provider is a reference record for a clinician or practice.
type Provider struct {
	ProviderID     string   `json:"provider_id"`
	Specialty      string   `json:"specialty"`
	Location       string   `json:"location"`
	InNetworkPlans []string `json:"in_network_plans"`
}

// InNetwork reports whether the provider accepts the given plan.
func (p Provider) InNetwork(planID string) bool {
	if planID == "" {
		return false
	}
	for _, id := range p.InNetworkPlans {
		if id == planID {
			return true
		}
	}
	return false
}

// Episode is one patient-provider visit. ProviderID is informational only;
// provider matching searches the full pool.
type Episode struct {
	EpisodeID  string `json:"episode_id"`
	PatientID  string `json:"patient_id"`
	ProviderID string `json:"provider_id"`
	Specialty  string `json:"specialty"`
	VisitDate  string `json:"visit_date"`
}

// Preferences holds per-patient presentation settings.
type Preferences struct {
	PatientID         string `json:"patient_id"`
	ReminderTime      string `json:"reminder_time,omitempty"`
	DetailLevel       string `json:"detail_level,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}
