// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/recommend"
)

type mediaRecord struct {
	Type      string    `json:"type"`
	Genres    []string  `json:"genres"`
	Directors []string  `json:"directors"`
	Cast      []string  `json:"cast"`
	Duration  float64   `json:"duration"`
	ViewCount int       `json:"view_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type feedbackRecord struct {
	Signal     recommend.Signal `json:"signal"`
	RecordedAt time.Time        `json:"recorded_at"`
}

type historyRecord struct {
	Title         string             `json:"title"`
	Moods         []string           `json:"moods"`
	Time          recommend.TimePref `json:"time"`
	Page          int                `json:"page"`
	Rank          int                `json:"rank"`
	RecommendedAt time.Time          `json:"recommended_at"`
}

// SaveFeedback stores signal for (sessionID, title), replacing any earlier one.
func (s *Store) SaveFeedback(ctx context.Context, sessionID, title string, signal recommend.Signal) (err error) {
	start := time.Now()
	defer func() { observe("save_feedback", start, err) }()

	if sessionID == "" || title == "" {
		return ErrEmptyKey
	}
	if err := checkCtx(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(feedbackRecord{Signal: signal, RecordedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(feedbackKey(sessionID, title), data)
	})
}

// FeedbackForSession returns the session's signals in title order.
func (s *Store) FeedbackForSession(ctx context.Context, sessionID string) (entries []recommend.FeedbackEntry, err error) {
	start := time.Now()
	defer func() { observe("feedback_for_session", start, err) }()

	err = s.eachFeedback(ctx, sessionID, func(_ *badger.Txn, title string, rec feedbackRecord) error {
		entries = append(entries, recommend.FeedbackEntry{
			SessionID:  sessionID,
			Title:      title,
			Signal:     rec.Signal,
			RecordedAt: rec.RecordedAt,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return entries, nil
}

// LikedDislikedAttributes looks up each voted title in the media records.
// Titles without a media record contribute nothing.
func (s *Store) LikedDislikedAttributes(ctx context.Context, sessionID string) (liked, disliked recommend.AttributeSet, err error) {
	start := time.Now()
	defer func() { observe("liked_disliked", start, err) }()

	up, down := newCollector(), newCollector()
	err = s.eachFeedback(ctx, sessionID, func(txn *badger.Txn, title string, rec feedbackRecord) error {
		media, found, err := readMedia(txn, title)
		if err != nil || !found {
			return err
		}
		if rec.Signal == recommend.SignalDown {
			down.add(media)
		} else {
			up.add(media)
		}
		return nil
	})
	if err != nil {
		return liked, disliked, fmt.Errorf("collect attributes: %w", err)
	}
	return up.set(), down.set(), nil
}

func (s *Store) eachFeedback(ctx context.Context, sessionID string, fn func(*badger.Txn, string, feedbackRecord) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := feedbackPrefix(sessionID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := checkCtx(ctx); err != nil {
				return err
			}

			item := it.Item()
			var rec feedbackRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping unreadable feedback record")
				continue
			}
			if err := fn(txn, titleFromFeedbackKey(item.Key(), prefix), rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertMedia writes one media record per title. Later duplicates win.
// Large catalogs are split across transactions when Badger reports the
// current one is too big.
func (s *Store) UpsertMedia(ctx context.Context, items []recommend.MediaItem) (err error) {
	start := time.Now()
	defer func() { observe("upsert_media", start, err) }()

	now := time.Now().UTC()
	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	for i := range items {
		if err := checkCtx(ctx); err != nil {
			return err
		}
		item := &items[i]
		if item.Title == "" {
			continue
		}
		data, err := json.Marshal(mediaRecord{
			Type:      item.Type,
			Genres:    item.Genres,
			Directors: item.Directors,
			Cast:      item.Cast,
			Duration:  item.Duration,
			ViewCount: item.ViewCount,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("marshal media %q: %w", item.Title, err)
		}

		key := mediaKey(item.Title)
		err = txn.Set(key, data)
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return fmt.Errorf("commit media batch: %w", err)
			}
			txn = s.db.NewTransaction(true)
			err = txn.Set(key, data)
		}
		if err != nil {
			return fmt.Errorf("set media %q: %w", item.Title, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit media batch: %w", err)
	}
	return nil
}

// MediaCount returns the number of media records.
func (s *Store) MediaCount(ctx context.Context) (count int, err error) {
	start := time.Now()
	defer func() { observe("media_count", start, err) }()

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixMedia)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := checkCtx(ctx); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return count, nil
}

func readMedia(txn *badger.Txn, title string) (mediaRecord, bool, error) {
	var rec mediaRecord
	item, err := txn.Get(mediaKey(title))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("get media %q: %w", title, err)
	}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return rec, false, fmt.Errorf("decode media %q: %w", title, err)
	}
	return rec, true, nil
}

// RecordRecommendations appends history entries, each with the configured TTL.
func (s *Store) RecordRecommendations(ctx context.Context, entries []recommend.HistoryEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observe("record_history", start, err) }()

	return s.db.Update(func(txn *badger.Txn) error {
		for i := range entries {
			if err := checkCtx(ctx); err != nil {
				return err
			}
			e := &entries[i]
			if e.SessionID == "" {
				return ErrEmptyKey
			}
			data, err := json.Marshal(historyRecord{
				Title:         e.Title,
				Moods:         e.Moods,
				Time:          e.Time,
				Page:          e.Page,
				Rank:          e.Rank,
				RecommendedAt: e.RecommendedAt.UTC(),
			})
			if err != nil {
				return fmt.Errorf("marshal history: %w", err)
			}

			entry := badger.NewEntry(historyKey(e.SessionID, e.RecommendedAt, s.seq.Add(1)), data)
			if s.historyTTL > 0 {
				entry = entry.WithTTL(s.historyTTL)
			}
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("set history: %w", err)
			}
		}
		return nil
	})
}

// RecentRecommendations returns up to limit entries for the session, newest first.
func (s *Store) RecentRecommendations(ctx context.Context, sessionID string, limit int) (entries []recommend.HistoryEntry, err error) {
	start := time.Now()
	defer func() { observe("recent_history", start, err) }()

	if limit <= 0 {
		return nil, nil
	}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchSize = limit
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := historyPrefix(sessionID)
		for it.Seek(historySeekKey(sessionID)); it.ValidForPrefix(prefix) && len(entries) < limit; it.Next() {
			if err := checkCtx(ctx); err != nil {
				return err
			}

			var rec historyRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				logging.Warn().Err(err).Msg("Skipping unreadable history record")
				continue
			}
			entries = append(entries, recommend.HistoryEntry{
				SessionID:     sessionID,
				Title:         rec.Title,
				Moods:         rec.Moods,
				Time:          rec.Time,
				Page:          rec.Page,
				Rank:          rec.Rank,
				RecommendedAt: rec.RecommendedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// collector accumulates lowercased, de-duplicated attribute values.
type collector struct {
	genres, directors, cast map[string]struct{}
}

func newCollector() *collector {
	return &collector{
		genres:    make(map[string]struct{}),
		directors: make(map[string]struct{}),
		cast:      make(map[string]struct{}),
	}
}

func (c *collector) add(rec mediaRecord) {
	addLower(c.genres, rec.Genres)
	addLower(c.directors, rec.Directors)
	addLower(c.cast, rec.Cast)
}

func (c *collector) set() recommend.AttributeSet {
	return recommend.AttributeSet{
		Genres:    sortedKeys(c.genres),
		Directors: sortedKeys(c.directors),
		Cast:      sortedKeys(c.cast),
	}
}

func addLower(dst map[string]struct{}, values []string) {
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			dst[v] = struct{}{}
		}
	}
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
