package model

// InsuranceStatus is the lookup service's answer for one provider.
type InsuranceStatus struct {
	Name     string `json:"name"`
	Accepted bool   `json:"accepted"`
}
