// Package props provides the ordered string property bags used to parameterise
// audio graph nodes, and the parser for the legacy key=value argument syntax.
package props

// Well-known property keys shared by the adapter and the host.
const (
	KeyNodeName    = "node.name"
	KeyNodeGroup   = "node.group"
	KeyNodeTarget  = "node.target"
	KeyNodePassive = "node.passive"
	KeyMediaClass  = "media.class"

	KeyAudioChannels = "audio.channels"
	KeyAudioPosition = "audio.position"

	KeyModuleAuthor      = "module.author"
	KeyModuleDescription = "module.description"
	KeyModuleUsage       = "module.usage"
	KeyModuleVersion     = "module.version"
)

// Item is a single key/value pair of a property bag.
type Item struct {
	Key   string
	Value string
}

// Props is a string-to-string map that remembers the order in which keys
// were first inserted. Re-setting a key keeps its position.
type Props struct {
	items []Item
	index map[string]int
}

// New creates a property bag holding the given items in order.
func New(items ...Item) *Props {
	p := &Props{index: make(map[string]int, len(items))}
	for _, it := range items {
		p.Set(it.Key, it.Value)
	}
	return p
}

// Parse creates a property bag from a legacy argument string.
func Parse(argument string) (*Props, error) {
	p := New()
	if err := p.Update(argument); err != nil {
		return nil, err
	}
	return p, nil
}

// Len returns the number of keys in the bag.
func (p *Props) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Get returns the value stored under key.
func (p *Props) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	i, ok := p.index[key]
	if !ok {
		return "", false
	}
	return p.items[i].Value, true
}

// Value returns the value stored under key, or "" when absent.
func (p *Props) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Has reports whether key is present.
func (p *Props) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set stores value under key. New keys are appended at the end.
func (p *Props) Set(key, value string) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[key]; ok {
		p.items[i].Value = value
		return
	}
	p.index[key] = len(p.items)
	p.items = append(p.items, Item{Key: key, Value: value})
}

// SetDefault stores value under key only if the key is not present yet.
func (p *Props) SetDefault(key, value string) {
	if !p.Has(key) {
		p.Set(key, value)
	}
}

// Delete removes key and reports whether it was present.
func (p *Props) Delete(key string) bool {
	i, ok := p.index[key]
	if !ok {
		return false
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	delete(p.index, key)
	for j := i; j < len(p.items); j++ {
		p.index[p.items[j].Key] = j
	}
	return true
}

// Take returns the value under key and removes it from the bag.
func (p *Props) Take(key string) (string, bool) {
	v, ok := p.Get(key)
	if ok {
		p.Delete(key)
	}
	return v, ok
}

// Items returns a copy of the bag contents in insertion order.
func (p *Props) Items() []Item {
	if p == nil {
		return nil
	}
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

// Keys returns the keys in insertion order.
func (p *Props) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.items))
	for i, it := range p.items {
		keys[i] = it.Key
	}
	return keys
}

// Clone returns an independent copy of the bag.
func (p *Props) Clone() *Props {
	return New(p.Items()...)
}

// Clear removes every key.
func (p *Props) Clear() {
	p.items = nil
	p.index = make(map[string]int)
}
