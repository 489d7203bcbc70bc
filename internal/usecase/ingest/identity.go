package ingest

import (
	"hash/fnv"
	"strconv"
	"strings"

	"decks/internal/domain/entity"
)

// sourceID derives the stable deduplication identity for a feed entry: the
// guid verbatim when the feed supplies one, otherwise a 32-bit FNV-1a hash
// of the link. The hash only needs determinism; collisions are absorbed by
// the ignore-on-conflict upsert key.
func sourceID(raw entity.RawFeedItem) string {
	if guid := strings.TrimSpace(raw.GUID); guid != "" {
		return guid
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(raw.Link))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}
