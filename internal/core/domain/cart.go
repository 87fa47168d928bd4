package domain

// MinSeeds is the minimum cart size that enables a similarity search.
const MinSeeds = 5

// Cart is one session's ordered selection of reference songs. A song appears
// at most once, by natural key. The zero value is an empty cart.
type Cart struct {
	songs []SongRecord
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{songs: []SongRecord{}}
}

// Add inserts s when absent. It reports whether the cart changed.
func (c *Cart) Add(s SongRecord) bool {
	if c.indexOf(s.Key()) >= 0 {
		return false
	}
	c.songs = append(c.songs, s)
	return true
}

// Remove deletes s by natural key. It reports whether the cart changed.
func (c *Cart) Remove(s SongRecord) bool {
	i := c.indexOf(s.Key())
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// RemoveAt deletes the song at position i. Out-of-range positions are a no-op.
func (c *Cart) RemoveAt(i int) bool {
	if i < 0 || i >= len(c.songs) {
		return false
	}
	c.removeAt(i)
	return true
}

// Toggle adds s when absent and removes it otherwise. It returns whether s is
// in the cart afterwards.
func (c *Cart) Toggle(s SongRecord) bool {
	if c.Remove(s) {
		return false
	}
	c.songs = append(c.songs, s)
	return true
}

// Contains reports membership by natural key.
func (c *Cart) Contains(key SongKey) bool {
	return c.indexOf(key) >= 0
}

// Len returns the number of songs in the cart.
func (c *Cart) Len() int {
	return len(c.songs)
}

// CanSearch reports whether the cart holds enough seeds for a search.
func (c *Cart) CanSearch() bool {
	return c.Len() >= MinSeeds
}

// Songs returns a copy of the cart contents in insertion order.
func (c *Cart) Songs() []SongRecord {
	out := make([]SongRecord, len(c.songs))
	copy(out, c.songs)
	return out
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.songs = c.songs[:0]
}

func (c *Cart) removeAt(i int) {
	c.songs = append(c.songs[:i], c.songs[i+1:]...)
}

// Carts hold a handful of songs, a linear scan is enough.
func (c *Cart) indexOf(key SongKey) int {
	for i, s := range c.songs {
		if s.Key() == key {
			return i
		}
	}
	return -1
}
