package model

// Company is the onboarding-derived company profile. It is written by the
// onboarding flow and only read by this layer.
type Company struct {
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
}

// Organization is the business profile captured during onboarding.
type Organization struct {
	BusinessName string `json:"businessName"`
	Email        string `json:"email,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}
