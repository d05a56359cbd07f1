package models

import "time"

// Repo identifies a GitHub repository plus the display metadata the
// trending page and search API provide. Star/fork counts stay strings
// because GitHub renders them pre-formatted ("12.3k").
type Repo struct {
	Author      string `json:"author"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       string `json:"stars"`
	Forks       string `json:"forks"`
	StarsToday  string `json:"stars_today"`
	URL         string `json:"url"`
	Topic       string `json:"topic"`
}

// Favorite is a bookmarked repo row.
type Favorite struct {
	ID        int64     `json:"id"`
	Repo      Repo      `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}
