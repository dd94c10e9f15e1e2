// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

// Mood names accepted in PreferenceInput.Moods.
const (
	MoodLightFunny = "light_funny"
	MoodIntense    = "intense"
	MoodEmotional  = "emotional"
	MoodDramatic   = "dramatic"
)

// MoodDefinition maps a mood to the genre tags matched against item genres,
// extra keywords matched against summaries, and genres that clash with it.
// All values are lowercase.
type MoodDefinition struct {
	Name              string
	Genres            []string
	Keywords          []string
	ConflictingGenres []string
}

var moodTable = []MoodDefinition{
	{
		Name:              MoodLightFunny,
		Genres:            []string{"comedy", "family", "animation"},
		Keywords:          []string{"funny", "witty", "light", "humor", "hilarious", "feel-good", "uplifting", "charming", "quirky"},
		ConflictingGenres: []string{"horror", "thriller", "war"},
	},
	{
		Name:              MoodIntense,
		Genres:            []string{"action", "thriller", "crime", "war"},
		Keywords:          []string{"intense", "gripping", "suspense", "adrenaline", "high-stakes", "explosive", "danger", "chase", "battle"},
		ConflictingGenres: []string{"animation", "family", "comedy"},
	},
	{
		Name:              MoodEmotional,
		Genres:            []string{"drama", "romance"},
		Keywords:          []string{"emotional", "heartfelt", "poignant", "tearjerker", "moving", "touching", "love", "relationship", "loss"},
		ConflictingGenres: []string{"action", "war", "horror"},
	},
	{
		Name:              MoodDramatic,
		Genres:            []string{"mystery", "history", "music", "fantasy", "science fiction"},
		Keywords:          []string{"dramatic", "twist", "mystery", "historical", "epic", "musical", "fantastical", "sci-fi", "imaginative", "legendary"},
		ConflictingGenres: []string{"animation", "family", "comedy"},
	},
}

var moodsByName = func() map[string]*MoodDefinition {
	m := make(map[string]*MoodDefinition, len(moodTable))
	for i := range moodTable {
		m[moodTable[i].Name] = &moodTable[i]
	}
	return m
}()

// Moods returns a copy of the mood table in display order.
func Moods() []MoodDefinition {
	out := make([]MoodDefinition, len(moodTable))
	for i, d := range moodTable {
		out[i] = MoodDefinition{
			Name:              d.Name,
			Genres:            append([]string(nil), d.Genres...),
			Keywords:          append([]string(nil), d.Keywords...),
			ConflictingGenres: append([]string(nil), d.ConflictingGenres...),
		}
	}
	return out
}

// IsKnownMood reports whether name is in the mood table.
func IsKnownMood(name string) bool {
	_, ok := moodsByName[name]
	return ok
}

// moodExpansion is the per-request union of the selected moods' tags.
type moodExpansion struct {
	genres       map[string]struct{} // genre tags
	summaryTerms []string            // genre tags then keywords, deduplicated
}

func expandMoods(moods []string) moodExpansion {
	exp := moodExpansion{genres: make(map[string]struct{})}
	seen := make(map[string]struct{})

	addTerm := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		exp.summaryTerms = append(exp.summaryTerms, term)
	}

	for _, name := range moods {
		def, ok := moodsByName[name]
		if !ok {
			continue
		}
		for _, g := range def.Genres {
			exp.genres[g] = struct{}{}
			addTerm(g)
		}
	}
	for _, name := range moods {
		def, ok := moodsByName[name]
		if !ok {
			continue
		}
		for _, kw := range def.Keywords {
			addTerm(kw)
		}
	}
	return exp
}

func (e moodExpansion) empty() bool {
	return len(e.genres) == 0
}
