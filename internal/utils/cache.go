package utils

import (
	"fmt"
	"html/template"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"inkpost/internal/logs"
)

// RenderCache memoises rendered HTML. Keys embed the source's last update
// time, so an entry is never stale: edits produce a new key and the old one
// ages out of the LRU.
type RenderCache struct {
	lruCache *lru.Cache[string, template.HTML]
}

var (
	renderCache     *RenderCache
	renderCacheOnce sync.Once
)

// GetRenderCache 获取单例缓存实例
func GetRenderCache() *RenderCache {
	renderCacheOnce.Do(func() {
		l, err := lru.New[string, template.HTML](500)
		if err != nil {
			logs.Error.Fatalf("Failed to create LRU cache: %v", err)
		}
		renderCache = &RenderCache{lruCache: l}
	})
	return renderCache
}

// RenderKey builds the cache key for one version of a record.
func RenderKey(kind string, id uint, updatedAt time.Time) string {
	return fmt.Sprintf("%s:%d:%d", kind, id, updatedAt.UnixNano())
}

// GetOrRender returns the cached HTML for key, calling render on a miss.
func (c *RenderCache) GetOrRender(key string, render func() template.HTML) template.HTML {
	if html, ok := c.lruCache.Get(key); ok {
		return html
	}
	html := render()
	c.lruCache.Add(key, html)
	return html
}

func (c *RenderCache) Len() int {
	return c.lruCache.Len()
}
