package nfa

// utf8SuffixCache caches UTF-8 suffix states for deduplication during NFA
// construction. Patterns like '.' or wide Unicode classes need dozens of
// continuation-byte states; by processing byte sequences in REVERSE order
// and caching (targetState, byteRange) -> stateID, common suffixes like
// [80-BF] are shared instead of duplicated.
type utf8SuffixCache struct {
	version  uint16
	capacity int
	entries  []utf8SuffixEntry
}

// utf8SuffixKey uniquely identifies a suffix transition: the state the byte
// range transitions TO, plus the range itself.
type utf8SuffixKey struct {
	from  StateID
	start byte
	end   byte
}

type utf8SuffixEntry struct {
	version uint16
	key     utf8SuffixKey
	val     StateID
}

const defaultUtf8SuffixCacheCapacity = 64

func newUtf8SuffixCache() *utf8SuffixCache {
	return &utf8SuffixCache{
		version:  1,
		capacity: defaultUtf8SuffixCacheCapacity,
		entries:  make([]utf8SuffixEntry, defaultUtf8SuffixCacheCapacity),
	}
}

// hash computes the cache index for a key using FNV-1a.
func (c *utf8SuffixCache) hash(key utf8SuffixKey) int {
	h := uint64(14695981039346656037)
	h = (h ^ uint64(key.from)) * 1099511628211
	h = (h ^ uint64(key.start)) * 1099511628211
	h = (h ^ uint64(key.end)) * 1099511628211
	//nolint:gosec // capacity is always small (64), no overflow risk
	return int(h % uint64(c.capacity))
}

func (c *utf8SuffixCache) get(key utf8SuffixKey) (StateID, bool) {
	idx := c.hash(key)
	e := &c.entries[idx]
	if e.version == c.version && e.key == key {
		return e.val, true
	}
	return 0, false
}

func (c *utf8SuffixCache) set(key utf8SuffixKey, val StateID) {
	idx := c.hash(key)
	c.entries[idx] = utf8SuffixEntry{version: c.version, key: key, val: val}
}

// getOrCreate returns a cached state or creates a new one using the builder.
func (c *utf8SuffixCache) getOrCreate(builder *Builder, targetState StateID, lo, hi byte) StateID {
	key := utf8SuffixKey{from: targetState, start: lo, end: hi}

	if cached, found := c.get(key); found {
		return cached
	}

	newState := builder.AddByteRange(lo, hi, targetState)
	c.set(key, newState)
	return newState
}
