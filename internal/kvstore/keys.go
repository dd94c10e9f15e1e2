// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package kvstore

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

const sep = 0x00

func mediaKey(title string) []byte {
	return append([]byte(prefixMedia), title...)
}

func feedbackPrefix(sessionID string) []byte {
	k := make([]byte, 0, len(prefixFeedback)+len(sessionID)+1)
	k = append(k, prefixFeedback...)
	k = append(k, sessionID...)
	return append(k, sep)
}

func feedbackKey(sessionID, title string) []byte {
	return append(feedbackPrefix(sessionID), title...)
}

// titleFromFeedbackKey strips the session prefix from a feedback key.
func titleFromFeedbackKey(key, prefix []byte) string {
	return string(bytes.TrimPrefix(key, prefix))
}

func historyPrefix(sessionID string) []byte {
	k := make([]byte, 0, len(prefixHistory)+len(sessionID)+1)
	k = append(k, prefixHistory...)
	k = append(k, sessionID...)
	return append(k, sep)
}

// historyKey orders entries by time. The sequence is stored inverted so that
// a reverse scan returns entries written in one batch in insertion order.
func historyKey(sessionID string, at time.Time, seq uint64) []byte {
	k := historyPrefix(sessionID)
	k = binary.BigEndian.AppendUint64(k, uint64(at.UnixNano()))
	return binary.BigEndian.AppendUint64(k, math.MaxUint64-seq)
}

// historySeekKey is the upper bound of a session's history keys, the start
// point of a reverse scan.
func historySeekKey(sessionID string) []byte {
	return append(historyPrefix(sessionID), bytes.Repeat([]byte{0xFF}, 17)...)
}
