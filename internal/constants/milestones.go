package constants

// Milestone is a streak length that earns a motivational message.
type Milestone struct {
	Days    int
	Message string
}

// Milestones must stay sorted by Days.
var Milestones = []Milestone{
	{Days: 1, Message: "Great start! Keep it going!"},
	{Days: 3, Message: "You're building momentum!"},
	{Days: 7, Message: "One week strong! Amazing!"},
	{Days: 14, Message: "Two weeks! You're unstoppable!"},
	{Days: 21, Message: "Three weeks! You're forming a habit!"},
	{Days: 30, Message: "One month! You're incredible!"},
}

func init() {
	for i := 1; i < len(Milestones); i++ {
		if Milestones[i].Days <= Milestones[i-1].Days {
			panic("constants.Milestones must be strictly ascending by Days")
		}
	}
}
