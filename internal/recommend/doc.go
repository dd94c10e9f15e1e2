// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package recommend turns a media catalog, a mood/preference profile and a
// session's feedback into an ordered, paginated recommendation list.
//
// # Pipeline
//
//	PreferenceInput -> Normalize -> cache probe
//	                                   | miss
//	               feedback aggregation || catalog fetch   (errgroup)
//	                                   |
//	              Filter -> Scorer -> Rank -> Paginate -> cache write
//
// Each stage is a plain function over request-local data. Only the page
// cache and the seed source are shared between requests.
//
// # Randomness
//
// Page 1 is partly shuffled on every computation (fully, with surprise on)
// so repeat visits see variety; later pages are deterministic for a given
// catalog and feedback state. Surprise also adds bounded random points to
// scores. Each request draws from its own *rand.Rand seeded from the
// engine's source, so Config.Seed makes a whole process reproducible.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.Deps{
//	    Catalog:  plexBreaker,
//	    Feedback: store,
//	    History:  store,
//	    Cache:    pageCache,
//	}, logger)
//
//	page, err := engine.Recommend(ctx, sessionID, recommend.PreferenceInput{
//	    Moods: []string{"light_funny"},
//	    Time:  "under_1h",
//	}, 1, 3)
//
//	err = engine.RecordFeedback(ctx, sessionID, "Clue", recommend.SignalUp)
package recommend
