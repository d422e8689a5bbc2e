package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketQueueOrdersByKey(t *testing.T) {
	q := NewBucketQueue(10, 8)
	q.Push(0, -3)
	q.Push(1, 5)
	q.Push(2, 0)
	q.Push(3, 5)

	require.Equal(t, 4, q.Size())
	assert.Equal(t, 5, q.MaxKey())

	first := q.DeleteMax()
	second := q.DeleteMax()
	assert.ElementsMatch(t, []int{1, 3}, []int{first, second})
	assert.Equal(t, 0, q.MaxKey())
	assert.Equal(t, 2, q.DeleteMax())
	assert.Equal(t, 0, q.DeleteMax())
	assert.True(t, q.Empty())
}

func TestBucketQueueUpdateKey(t *testing.T) {
	q := NewBucketQueue(10, 4)
	q.Push(0, 1)
	q.Push(1, 2)

	q.UpdateKey(0, 7)
	assert.Equal(t, 7, q.Key(0))
	assert.Equal(t, 0, q.Max())

	q.UpdateKey(0, -7)
	assert.Equal(t, 1, q.Max())
}

func TestBucketQueueDeleteNode(t *testing.T) {
	q := NewBucketQueue(5, 4)
	q.Push(0, 3)
	q.Push(1, 3)
	q.Push(2, 1)

	q.DeleteNode(1)
	assert.False(t, q.Contains(1))
	assert.Equal(t, 2, q.Size())
	assert.Equal(t, 0, q.DeleteMax())
	assert.Equal(t, 2, q.DeleteMax())
}

func TestBucketQueueClear(t *testing.T) {
	q := NewBucketQueue(5, 4)
	q.Push(0, 2)
	q.Push(1, -2)
	q.Clear()

	assert.True(t, q.Empty())
	assert.False(t, q.Contains(0))
	assert.False(t, q.Contains(1))

	q.Push(1, 4)
	assert.Equal(t, 1, q.Max())
	assert.Equal(t, 4, q.MaxKey())
}

func TestBucketQueueNegativeKeys(t *testing.T) {
	q := NewBucketQueue(3, 3)
	q.Push(0, -3)
	q.Push(1, -1)

	assert.Equal(t, -1, q.MaxKey())
	assert.Equal(t, 1, q.DeleteMax())
	assert.Equal(t, -3, q.MaxKey())
}
