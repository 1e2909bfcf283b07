package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawProfile = `# User Profile
Some free text about the user.
## History
A book viewed 3 days ago
Title: Watchmen (['Comics', 'Graphic Novels'])
Description: A dark take on heroes.
Author: Alan Moore
Published at 1987 - DC Comics - 416 pages
Rating: 4.4
My Behavior: finished it
Rating: 5

A book viewed 1 week ago
Title: Maus
Published at 1991
A book viewed yesterday
Description: no title here
# Exposure List
[A] Title: Sandman (["Comics", "Fantasy"])
Author: Neil Gaiman
Published at 1989 - Vertigo - 240 pages
Rating: 4.5
[B] Title: Persepolis
Rating: 4.2
[C] no title line
`

func TestParseRawProfile_History(t *testing.T) {
	p := ParseRawProfile(rawProfile)
	require.Len(t, p.History, 2)

	w := p.History[0]
	assert.Equal(t, "Watchmen", w.Title)
	assert.Equal(t, "Comics, Graphic Novels", w.Genre)
	assert.Equal(t, "A dark take on heroes.", w.Description)
	assert.Equal(t, "Alan Moore", w.Author)
	assert.Equal(t, "1987 - DC Comics", w.PublishedAt)
	assert.Equal(t, "416", w.Pages)
	assert.Equal(t, "4.4", w.GlobalRating)
	assert.Equal(t, "5", w.Rating)
	assert.Equal(t, "finished it", w.MyBehavior)

	m := p.History[1]
	assert.Equal(t, "Maus", m.Title)
	assert.Equal(t, "1991", m.PublishedAt)
	assert.Empty(t, m.Pages)
}

func TestParseRawProfile_Exposure(t *testing.T) {
	p := ParseRawProfile(rawProfile)
	require.Len(t, p.Exposure, 2)

	s := p.Exposure[0]
	assert.Equal(t, "Sandman", s.Title)
	assert.Equal(t, "Comics, Fantasy", s.Genre)
	assert.Equal(t, "Neil Gaiman", s.Author)
	assert.Equal(t, "1989 - Vertigo", s.PublishedAt)
	assert.Equal(t, "240", s.Pages)
	assert.Equal(t, "4.5", s.Rating)

	assert.Equal(t, "Persepolis", p.Exposure[1].Title)
	assert.Equal(t, "4.2", p.Exposure[1].Rating)
}

func TestParseRawProfile_MissingSections(t *testing.T) {
	assert.Empty(t, ParseRawProfile("").History)
	assert.Empty(t, ParseRawProfile("just prose").Exposure)

	onlyExposure := ParseRawProfile("# Exposure List\n[A] Title: Solo\n")
	assert.Empty(t, onlyExposure.History)
	require.Len(t, onlyExposure.Exposure, 1)
	assert.Equal(t, "Solo", onlyExposure.Exposure[0].Title)
}

func TestParseRawProfile_CRLF(t *testing.T) {
	p := ParseRawProfile("## History\r\nA book viewed today\r\nTitle: Dune\r\n# Exposure List\r\n[A] Title: Emma\r\n")
	require.Len(t, p.History, 1)
	assert.Equal(t, "Dune", p.History[0].Title)
	require.Len(t, p.Exposure, 1)
	assert.Equal(t, "Emma", p.Exposure[0].Title)
}
