package domain

type (
	Email        = string
	ActivityName = string
)

// Activity is an enrollable offering as last reported by the roster service.
// Participants keep the server's order.
type Activity struct {
	Name            ActivityName
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []Email
}

// SpotsLeft is capacity minus current enrollment. It goes negative when the
// server over-enrolls; the client never clamps it.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Activities is the collection in server key order.
type Activities []Activity

func (as Activities) Names() []ActivityName {
	names := make([]ActivityName, len(as))
	for i, a := range as {
		names[i] = a.Name
	}
	return names
}

// Find returns the activity with the given name.
func (as Activities) Find(name ActivityName) (Activity, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}
