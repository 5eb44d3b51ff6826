package model

import "time"

// Content is a rendered markdown page
type Content struct {
	HTML        string    `json:"html"`
	Raw         string    `json:"raw"`
	Members     []Member  `json:"members,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	Error       string    `json:"error,omitempty"`
}

// Member is one team member extracted from the members page
type Member struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	FullRole string `json:"fullRole,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// ContentCacheStatus describes cached content files
type ContentCacheStatus struct {
	Count   int                       `json:"count"`
	Entries []ContentCacheEntryStatus `json:"entries"`
}

// ContentCacheEntryStatus describes one cached content file
type ContentCacheEntryStatus struct {
	Filename string        `json:"filename"`
	CachedAt time.Time     `json:"cachedAt"`
	Age      time.Duration `json:"age"`
}
