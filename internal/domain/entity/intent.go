package entity

// Intent steers which response strategy answers a chat turn.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentDoctorQuery  Intent = "doctor_query"
	IntentGeneralQuery Intent = "general_query"
)

// ParseIntent maps a label to a known intent.
func ParseIntent(label string) (Intent, bool) {
	switch Intent(label) {
	case IntentGreeting, IntentDoctorQuery, IntentGeneralQuery:
		return Intent(label), true
	}
	return "", false
}
