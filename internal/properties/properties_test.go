package properties

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetIfAbsent_DoesNotOverwrite(t *testing.T) {
	// Given: an operator-supplied index URL
	p := FromMap(map[string]string{IndexURL: "custom:1234"})

	// When: a default is offered
	stored := p.SetIfAbsent(IndexURL, "localhost:9300")

	// Then: the operator value wins
	assert.False(t, stored)
	v, _ := p.Get(IndexURL)
	assert.Equal(t, "custom:1234", v)
}

func TestSetIfAbsent_StoresWhenUnset(t *testing.T) {
	p := New()

	assert.True(t, p.SetIfAbsent(IndexName, "conductor"))
	assert.Equal(t, "conductor", p.GetOrDefault(IndexName, "other"))
}

func TestSetIfAbsent_EmptyStringCountsAsSet(t *testing.T) {
	p := FromMap(map[string]string{IndexName: ""})

	assert.False(t, p.SetIfAbsent(IndexName, "conductor"))
}

func TestSetIfAbsent_ConcurrentCallersStoreOnce(t *testing.T) {
	p := New()
	var stored atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.SetIfAbsent(IndexURL, "localhost:9300") {
				stored.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), stored.Load())
}

func TestFromMap_CopiesInput(t *testing.T) {
	src := map[string]string{IndexURL: "a"}
	p := FromMap(src)

	src[IndexURL] = "b"

	assert.Equal(t, "a", p.GetOrDefault(IndexURL, ""))
}

func TestSnapshot_IsIndependent(t *testing.T) {
	p := New()
	p.Set(IndexURL, "a")

	snap := p.Snapshot()
	snap[IndexURL] = "b"

	assert.Equal(t, "a", p.GetOrDefault(IndexURL, ""))
	assert.Equal(t, "fallback", p.GetOrDefault("missing", "fallback"))
}
