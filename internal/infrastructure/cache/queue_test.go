package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func queueKeys(q *evictionQueue[string, int]) []string {
	var keys []string
	for e := range q.all() {
		keys = append(keys, e.key)
	}
	return keys
}

func TestEvictionQueue_Order(t *testing.T) {
	var q evictionQueue[string, int]
	q.init()
	assert.Nil(t, q.oldest())
	assert.Nil(t, q.popOldest())

	a := &entry[string, int]{key: "a"}
	b := &entry[string, int]{key: "b"}
	c := &entry[string, int]{key: "c"}
	q.pushBack(a)
	q.pushBack(b)
	q.pushBack(c)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []string{"a", "b", "c"}, queueKeys(&q))
	assert.Same(t, a, q.oldest())

	q.remove(b)
	assert.Equal(t, []string{"a", "c"}, queueKeys(&q))
	assert.Nil(t, b.prev)
	assert.Nil(t, b.next)

	assert.Same(t, a, q.popOldest())
	assert.Same(t, c, q.popOldest())
	assert.Zero(t, q.Len())
}

func TestEvictionQueue_RemoveDuringIteration(t *testing.T) {
	var q evictionQueue[string, int]
	q.init()
	for _, k := range []string{"a", "b", "c"} {
		q.pushBack(&entry[string, int]{key: k})
	}

	for e := range q.all() {
		q.remove(e)
	}
	assert.Zero(t, q.Len())
	assert.Nil(t, q.oldest())
}
