package reference

import "fmt"

// Hero is a static Dota hero record. Heroes are loaded once per session and
// shared by pointer into match and player structures, never copied.
type Hero struct {
	ID            int64
	Name          string
	LocalizedName string
	ImageURL      string
}

// Item is a static shop item record.
type Item struct {
	ID       int64
	Name     string
	ImageURL string
	Cost     int
}

// League is a tournament record as reported by the match-data provider.
type League struct {
	ID   int64
	Name string
	Tier string
}

func (h Hero) Validate() error {
	if h.ID <= 0 {
		return fmt.Errorf("hero id must be greater than zero")
	}
	if h.Name == "" {
		return fmt.Errorf("hero name is required")
	}

	return nil
}

func (l League) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("league id must be greater than zero")
	}

	return nil
}
