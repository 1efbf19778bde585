package sound_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dgnsrekt/soundstage/internal/host"
	"github.com/dgnsrekt/soundstage/sound"
)

// Property: for every sequence of temporary-path plays, the cache size
// never exceeds its capacity, after every single operation.
func TestCacheCapacityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("cache size never exceeds capacity", prop.ForAll(
		func(ids []uint8) bool {
			mock := host.NewMockHost()
			c := sound.NewController(mock, sound.DefaultConfig())
			defer c.Shutdown()

			for _, id := range ids {
				c.PlaySoundFileNamed(fmt.Sprintf("sound-%d", id), sound.DefaultPlayOptions())
				if c.CacheStats().Size > sound.DefaultCacheCapacity {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("attached cached nodes match cache size", prop.ForAll(
		func(ids []uint8) bool {
			mock := host.NewMockHost()
			c := sound.NewController(mock, sound.DefaultConfig())
			defer c.Shutdown()

			for _, id := range ids {
				c.PlaySoundFileNamed(fmt.Sprintf("sound-%d", id), sound.DefaultPlayOptions())
			}
			return mock.AttachedCount() == c.CacheStats().Size
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

// Property: with all inserted names distinct, evictions happen strictly
// oldest-first, so after any overflow the cache holds exactly the most
// recent capacity-many nodes.
func TestCacheFIFOEvictionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("evictions are oldest-first", prop.ForAll(
		func(extra uint8) bool {
			mock := host.NewMockHost()
			capacity := 8
			cache := sound.NewTemporaryCache(mock, capacity)

			total := capacity + int(extra%16)
			nodes := make([]*sound.Node, 0, total)
			for i := 0; i < total; i++ {
				node := sound.NewNode(fmt.Sprintf("sound-%d", i))
				cache.Insert(node)
				nodes = append(nodes, node)
			}

			evicted := total - capacity
			for i, node := range nodes {
				attached := mock.IsAttached(node)
				if i < evicted && attached {
					return false // old node survived
				}
				if i >= evicted && !attached {
					return false // recent node evicted
				}
			}
			return cache.Stats().Evictions == int64(evicted)
		},
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
