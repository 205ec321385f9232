package tileset

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"tilekit/internal/terrain"
)

// bitmapCache holds decoded template bitmaps keyed by template id. Entries are
// inserted at most once and never removed.
type bitmapCache struct {
	bitmaps map[uint16]*terrain.Bitmap
	mutex   sync.RWMutex
	group   singleflight.Group // collapses concurrent loads of the same id
}

func newBitmapCache() *bitmapCache {
	return &bitmapCache{
		bitmaps: make(map[uint16]*terrain.Bitmap),
	}
}

func (c *bitmapCache) get(id uint16) (*terrain.Bitmap, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	bmp, ok := c.bitmaps[id]
	return bmp, ok
}

// getOrLoad returns the cached bitmap for id, calling load when there is none.
// Concurrent callers for the same id share a single load call. The boolean is
// true when the bitmap was already cached.
func (c *bitmapCache) getOrLoad(id uint16, load func() (*terrain.Bitmap, error)) (*terrain.Bitmap, bool, error) {
	// First attempt: read lock only
	if bmp, ok := c.get(id); ok {
		return bmp, true, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(int(id)), func() (interface{}, error) {
		// Another caller may have finished between the read above and this call
		if bmp, ok := c.get(id); ok {
			return bmp, nil
		}

		bmp, err := load()
		if err != nil {
			return nil, err
		}

		c.mutex.Lock()
		defer c.mutex.Unlock()
		if existing, ok := c.bitmaps[id]; ok {
			return existing, nil
		}
		c.bitmaps[id] = bmp
		return bmp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*terrain.Bitmap), false, nil
}

func (c *bitmapCache) size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.bitmaps)
}
