package vm

// Table is an open-addressed hash table with linear probing, keyed by
// interned string objects. It backs both the globals environment and the
// string intern set. A nil key marks an empty slot, unless the value is
// boolean true, which marks a tombstone left behind by Delete.
type Table struct {
	// count tracks occupied slots including tombstones: tombstones are real
	// probe work and must weigh on the load factor, but they do not make a
	// key "present".
	count   int
	entries []entry
}

type entry struct {
	key   *Object
	value Value
}

const tableMaxLoad = 0.75

// Get returns the value stored for key.
func (t *Table) Get(key *Object) (Value, bool) {
	if t.count == 0 {
		return Nil(), false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return Nil(), false
	}
	return e.value, true
}

// Set stores value for key and reports whether the key is new.
func (t *Table) Set(key *Object, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}
	e := findEntry(t.entries, key)
	isNew := e.key == nil
	if isNew && e.value.IsNil() {
		t.count++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key, leaving a tombstone to keep probe chains intact.
func (t *Table) Delete(key *Object) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = Bool(true)
	return true
}

// FindString locates an interned string by content, comparing length and
// hash before bytes. Used to dedupe strings before allocating an object.
func (t *Table) FindString(s string, hash uint32) *Object {
	if t.count == 0 {
		return nil
	}
	index := int(hash) % len(t.entries)
	for {
		e := &t.entries[index]
		if e.key == nil {
			// stop at a truly empty slot; skip tombstones
			if e.value.IsNil() {
				return nil
			}
		} else if len(e.key.Str) == len(s) && e.key.Hash == hash && e.key.Str == s {
			return e.key
		}
		index = (index + 1) % len(t.entries)
	}
}

// Each invokes fn for every live entry.
func (t *Table) Each(fn func(key *Object, value Value)) {
	for i := range t.entries {
		if t.entries[i].key != nil {
			fn(t.entries[i].key, t.entries[i].value)
		}
	}
}

// Reset drops all entries and tombstones.
func (t *Table) Reset() {
	t.count = 0
	t.entries = nil
}

func findEntry(entries []entry, key *Object) *entry {
	index := int(key.Hash) % len(entries)
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % len(entries)
	}
}

// grow moves to the next capacity (8, then doubling), rehashing live
// entries and discarding tombstones.
func (t *Table) grow() {
	capacity := 8
	if len(t.entries) > 0 {
		capacity = len(t.entries) * 2
	}
	entries := make([]entry, capacity)
	count := 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue
		}
		dst := findEntry(entries, old.key)
		dst.key = old.key
		dst.value = old.value
		count++
	}
	t.entries = entries
	t.count = count
}
