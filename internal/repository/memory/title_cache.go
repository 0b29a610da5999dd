package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TitleCache is a read-through cache in front of the session_titles table.
// Entries expire on their own; writes and deletes keep it coherent with the
// store within a single instance.
type TitleCache struct {
	cache *cache.Cache
}

func NewTitleCache() *TitleCache {
	// Default expiration of 30 minutes, purge sweep every 10.
	c := cache.New(30*time.Minute, 10*time.Minute)
	return &TitleCache{
		cache: c,
	}
}

func (r *TitleCache) Set(sessionID, title string) {
	r.cache.Set(sessionID, title, cache.DefaultExpiration)
}

func (r *TitleCache) Get(sessionID string) (string, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(string), true
	}
	return "", false
}

func (r *TitleCache) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
