package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(chartHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the engine parameters that change a layout result.
type LayoutKeyOpts struct {
	Gap         float64 `json:"gap"`
	MinDistance float64 `json:"min_distance"`
}

// ArtifactKeyOpts are the render parameters that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Size     float64 `json:"size,omitempty"`
	Title    string  `json:"title,omitempty"`
	Leaders  bool    `json:"leaders,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer names entries "<kind>:<sha256>" where the digest covers the
// input hash and the JSON form of the options.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(chartHash string, opts LayoutKeyOpts) string {
	return digestKey("layout", chartHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return digestKey("artifact", layoutHash, opts)
}

func digestKey(kind, input string, opts any) string {
	// Both option structs hold only numbers, strings and bools.
	data, _ := json.Marshal(struct {
		Input string `json:"input"`
		Opts  any    `json:"opts"`
	}{input, opts})
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Prefixed puts prefix in front of every key inner produces. A nil inner
// means [DefaultKeyer].
//
//	k := cache.Prefixed(nil, "v0.4.0:")
func Prefixed(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return prefixedKeyer{inner: inner, prefix: prefix}
}

type prefixedKeyer struct {
	inner  Keyer
	prefix string
}

func (k prefixedKeyer) LayoutKey(chartHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(chartHash, opts)
}

func (k prefixedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
