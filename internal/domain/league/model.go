package league

import "fmt"

// League is a competition in the primary provider's id space.
type League struct {
	ID       int64
	Name     string
	Provider string
}

func (l League) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("league id must be greater than zero")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Provider == "" {
		return fmt.Errorf("league provider is required")
	}

	return nil
}
