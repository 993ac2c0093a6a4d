package cache

// Keyer derives cache keys from render inputs.
type Keyer interface {
	// TreeKey identifies a tree by its content hash.
	TreeKey(treeHash string) string

	// SceneKey identifies the scene of a tree under a given view state.
	SceneKey(treeHash string, opts SceneKeyOpts) string

	// ArtifactKey identifies an encoded output of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts are the view-state inputs of a scene.
type SceneKeyOpts struct {
	MaxDepth  int      `json:"max_depth"`
	Collapsed []string `json:"collapsed,omitempty"`
	Geometry  any      `json:"geometry,omitempty"`
	Text      any      `json:"text,omitempty"`
}

// ArtifactKeyOpts are the encoding inputs of an artifact.
type ArtifactKeyOpts struct {
	Viz        string  `json:"viz"`
	Format     string  `json:"format"`
	Scale      float64 `json:"scale,omitempty"`
	Responsive bool    `json:"responsive,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Transform  any     `json:"transform,omitempty"`
}

// DefaultKeyer hashes all options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey returns "tree:<hash>".
func (DefaultKeyer) TreeKey(treeHash string) string {
	return "tree:" + treeHash
}

// SceneKey hashes the tree hash with the view state.
func (DefaultKeyer) SceneKey(treeHash string, opts SceneKeyOpts) string {
	return hashKey("scene", treeHash, opts)
}

// ArtifactKey hashes the scene hash with the encoding options.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
