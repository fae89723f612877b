package event

// SizedTags is an ordered string-to-string map that tracks its own
// serialized byte footprint incrementally, so a batch item can decide
// whether adding one more event would push it over a size threshold without
// re-walking every tag on every Add.
type SizedTags struct {
	keys   []string
	values []string
	index  map[string]int
	size   int64
}

// NewSizedTags returns an empty SizedTags.
func NewSizedTags() *SizedTags {
	return &SizedTags{index: make(map[string]int)}
}

// Add inserts or overwrites a tag, updating DataSize() in O(1).
func (t *SizedTags) Add(key, value string) {
	if i, ok := t.index[key]; ok {
		t.size += int64(len(value)) - int64(len(t.values[i]))
		t.values[i] = value
		return
	}
	t.index[key] = len(t.keys)
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
	t.size += int64(len(key)) + int64(len(value))
}

// Get returns the value for key and whether it was present.
func (t *SizedTags) Get(key string) (string, bool) {
	i, ok := t.index[key]
	if !ok {
		return "", false
	}
	return t.values[i], true
}

// DataSize returns the total byte footprint of all keys and values.
func (t *SizedTags) DataSize() int64 {
	return t.size
}

// Len returns the number of tags.
func (t *SizedTags) Len() int {
	return len(t.keys)
}

// Range calls fn for every tag in insertion order, matching the original
// pipeline's LabelsBegin/LabelsEnd iteration so that serialized payloads
// stay bit-compatible with its tag ordering.
func (t *SizedTags) Range(fn func(key, value string)) {
	for i, k := range t.keys {
		fn(k, t.values[i])
	}
}

// Clone returns a deep copy of t.
func (t *SizedTags) Clone() *SizedTags {
	c := &SizedTags{
		keys:   append([]string(nil), t.keys...),
		values: append([]string(nil), t.values...),
		index:  make(map[string]int, len(t.index)),
		size:   t.size,
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}
