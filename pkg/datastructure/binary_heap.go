package datastructure

type heapEntry struct {
	id  int
	key int
}

// BinaryHeap is a max-heap over (key, id) pairs with an id-indexed position
// map and an id-indexed data slot. The k-way refiner stores each vertex's
// best target part in the data slot next to its max gain key.
type BinaryHeap struct {
	entries  []heapEntry
	position []int // id -> heap index, -1 when absent
	data     []int // id -> side-channel payload
}

// NewBinaryHeap creates a heap for ids in [0, numElements).
func NewBinaryHeap(numElements int) *BinaryHeap {
	h := &BinaryHeap{
		entries:  make([]heapEntry, 0, numElements),
		position: make([]int, numElements),
		data:     make([]int, numElements),
	}
	for i := range h.position {
		h.position[i] = -1
	}
	return h
}

// Size returns the number of contained elements.
func (h *BinaryHeap) Size() int { return len(h.entries) }

// Empty reports whether the heap is empty.
func (h *BinaryHeap) Empty() bool { return len(h.entries) == 0 }

// Contains reports whether id is in the heap.
func (h *BinaryHeap) Contains(id int) bool { return h.position[id] >= 0 }

// Key returns the key of a contained id.
func (h *BinaryHeap) Key(id int) int { return h.entries[h.position[id]].key }

// Data returns the side-channel payload of id.
func (h *BinaryHeap) Data(id int) int { return h.data[id] }

// SetData overwrites the side-channel payload of id.
func (h *BinaryHeap) SetData(id, value int) { h.data[id] = value }

// ReInsert inserts id with key and payload. Valid for fresh ids and for ids
// that were removed earlier.
func (h *BinaryHeap) ReInsert(id, key, data int) {
	h.entries = append(h.entries, heapEntry{id: id, key: key})
	h.position[id] = len(h.entries) - 1
	h.data[id] = data
	h.siftUp(len(h.entries) - 1)
}

// UpdateKey changes the key of a contained id and restores heap order.
func (h *BinaryHeap) UpdateKey(id, newKey int) {
	pos := h.position[id]
	old := h.entries[pos].key
	h.entries[pos].key = newKey
	if newKey > old {
		h.siftUp(pos)
	} else if newKey < old {
		h.siftDown(pos)
	}
}

// Max returns the id with maximum key.
func (h *BinaryHeap) Max() int { return h.entries[0].id }

// MaxKey returns the maximum key.
func (h *BinaryHeap) MaxKey() int { return h.entries[0].key }

// DeleteMax removes the maximum element.
func (h *BinaryHeap) DeleteMax() {
	h.removeAt(0)
}

// Remove deletes an arbitrary contained id.
func (h *BinaryHeap) Remove(id int) {
	h.removeAt(h.position[id])
}

// Clear empties the heap in O(contained) time.
func (h *BinaryHeap) Clear() {
	for _, e := range h.entries {
		h.position[e.id] = -1
	}
	h.entries = h.entries[:0]
}

func (h *BinaryHeap) removeAt(pos int) {
	last := len(h.entries) - 1
	removed := h.entries[pos].id
	if pos != last {
		moved := h.entries[last]
		h.entries[pos] = moved
		h.position[moved.id] = pos
	}
	h.entries = h.entries[:last]
	h.position[removed] = -1
	if pos != last {
		h.siftDown(pos)
		h.siftUp(pos)
	}
}

func (h *BinaryHeap) siftUp(pos int) {
	entry := h.entries[pos]
	for pos > 0 {
		parent := (pos - 1) / 2
		if h.entries[parent].key >= entry.key {
			break
		}
		h.entries[pos] = h.entries[parent]
		h.position[h.entries[pos].id] = pos
		pos = parent
	}
	h.entries[pos] = entry
	h.position[entry.id] = pos
}

func (h *BinaryHeap) siftDown(pos int) {
	entry := h.entries[pos]
	n := len(h.entries)
	for {
		child := 2*pos + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.entries[right].key > h.entries[child].key {
			child = right
		}
		if h.entries[child].key <= entry.key {
			break
		}
		h.entries[pos] = h.entries[child]
		h.position[h.entries[pos].id] = pos
		pos = child
	}
	h.entries[pos] = entry
	h.position[entry.id] = pos
}
