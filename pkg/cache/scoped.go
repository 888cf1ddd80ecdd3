package cache

// ScopedKeyer wraps a Keyer with a prefix for tenant isolation.
// The HTTP server scopes keys by token so that content of private
// repositories fetched with one token is never served to another.
//
// Example usage:
//
//	// Token-specific keys for private repos
//	tokenKeyer := NewScopedKeyer(NewDefaultKeyer(), "tok:"+cache.Hash([]byte(token))[:12]+":")
//
//	// Global keys for anonymous access to public repos
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FileKey generates a prefixed key for a file body.
func (k *ScopedKeyer) FileKey(repo RepoKey, path string) string {
	return k.prefix + k.inner.FileKey(repo, path)
}

// ListingKey generates a prefixed key for a directory listing.
func (k *ScopedKeyer) ListingKey(repo RepoKey, path string) string {
	return k.prefix + k.inner.ListingKey(repo, path)
}
