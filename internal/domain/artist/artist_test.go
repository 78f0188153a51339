package artist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New("Daft Punk", "")
	assert.Equal(t, "Daft Punk", a.Name)
	assert.Nil(t, a.ImageURL)

	b := New("Daft Punk", "https://img.example.com/dp.jpg")
	require.NotNil(t, b.ImageURL)
	assert.Equal(t, "https://img.example.com/dp.jpg", *b.ImageURL)
}

func TestArtist_SameAs(t *testing.T) {
	assert.True(t, New("Imagine Dragons", "").SameAs(New("imagine dragons", "x")))
	assert.True(t, New("ABBA", "").SameAs(New("abba", "")))
	assert.False(t, New("Queen", "").SameAs(New("Queens", "")))
	assert.Equal(t, New("The Weeknd", "").Key(), New("THE WEEKND", "").Key())
}

func TestArtist_JSON(t *testing.T) {
	data, err := json.Marshal(New("Martin Garrix", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Martin Garrix","imageUrl":null}`, string(data))
}
