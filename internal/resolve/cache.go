package resolve

// Cache memoizes resolved ids for the lifetime of one batch run, including
// negative results. It is not safe for concurrent use; each run creates its
// own and passes it to the Resolver.
type Cache struct {
	ids       map[string]string // "" marks a cached not-found
	referring map[string]*ReferringProvider

	lookups int
	hits    int
}

// NewCache returns an empty per-run cache.
func NewCache() *Cache {
	return &Cache{
		ids:       make(map[string]string),
		referring: make(map[string]*ReferringProvider),
	}
}

// Len returns the number of cached keys across all namespaces.
func (c *Cache) Len() int {
	return len(c.ids) + len(c.referring)
}

// Stats returns how many resolutions were requested and how many were served
// from the cache.
func (c *Cache) Stats() (lookups, hits int) {
	return c.lookups, c.hits
}

func (c *Cache) id(key string) (string, bool) {
	c.lookups++
	id, ok := c.ids[key]
	if ok {
		c.hits++
	}
	return id, ok
}

func (c *Cache) putID(key, id string) {
	c.ids[key] = id
}

func (c *Cache) referringProvider(key string) (*ReferringProvider, bool) {
	c.lookups++
	rp, ok := c.referring[key]
	if ok {
		c.hits++
	}
	return rp, ok
}

func (c *Cache) putReferring(key string, rp *ReferringProvider) {
	c.referring[key] = rp
}
