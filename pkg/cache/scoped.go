package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The server scopes keys per deployment so several instances can share one
// Redis without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// TreeKey generates a prefixed tree key.
func (k *ScopedKeyer) TreeKey(treeHash string) string {
	return k.prefix + k.inner.TreeKey(treeHash)
}

// SceneKey generates a prefixed scene key.
func (k *ScopedKeyer) SceneKey(treeHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(treeHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
