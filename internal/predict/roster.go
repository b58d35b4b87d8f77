// Package predict synthesizes per-user behavioral feature vectors and
// scores them with a threshold-gated anomaly model. The scorer is a
// weighted-factor accumulator with fixed triggers and caps, not a
// trained model; classification is a fixed decision list.
package predict

// User identifies one monitored (simulated) user.
type User struct {
	ID         string
	Name       string
	Department string
	Role       string
}

// DefaultRoster is the fixed set of simulated users the dashboard scores
// each cycle.
var DefaultRoster = []User{
	{ID: "user-001", Name: "Sarah Chen", Department: "Engineering", Role: "Senior Developer"},
	{ID: "user-002", Name: "Marcus Johnson", Department: "Finance", Role: "Financial Analyst"},
	{ID: "user-003", Name: "Elena Rodriguez", Department: "Threat Research", Role: "Security Researcher"},
	{ID: "user-004", Name: "David Kim", Department: "IT Operations", Role: "Systems Administrator"},
	{ID: "user-005", Name: "Priya Patel", Department: "Engineering", Role: "Data Engineer"},
	{ID: "user-006", Name: "James O'Brien", Department: "Sales", Role: "Account Executive"},
	{ID: "user-007", Name: "Yuki Tanaka", Department: "Legal", Role: "Compliance Officer"},
	{ID: "user-008", Name: "Amara Okafor", Department: "HR", Role: "HR Business Partner"},
	{ID: "user-009", Name: "Tom Andersson", Department: "IT Operations", Role: "Cloud Architect"},
	{ID: "user-010", Name: "Fatima Al-Rashid", Department: "Finance", Role: "Treasury Manager"},
	{ID: "user-011", Name: "Lucas Meyer", Department: "Engineering", Role: "Platform Engineer"},
	{ID: "user-012", Name: "Grace Liu", Department: "Threat Research", Role: "Intelligence Analyst"},
}
