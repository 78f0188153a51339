// Package artist provides the Artist domain entity.
package artist

import "strings"

// Artist represents a followed artist.
// The catalog exposes no artist identifier, so the name is the identity.
type Artist struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// New creates an artist. An empty imageURL means no image.
func New(name, imageURL string) Artist {
	a := Artist{Name: name}
	if imageURL != "" {
		a.ImageURL = &imageURL
	}
	return a
}

// SameAs compares artists by name, case-insensitively.
func (a Artist) SameAs(other Artist) bool {
	return strings.EqualFold(a.Name, other.Name)
}

// Key returns the de-duplication key for the artist.
func (a Artist) Key() string {
	return strings.ToLower(a.Name)
}
