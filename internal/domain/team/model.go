package team

// Team is a club in the primary provider's id space.
type Team struct {
	ID        int64
	Name      string
	ShortCode string
	Provider  string
}
