// Package config defines the proof layers of the composition pipeline and
// loads their circuit-shape parameters from JSON asset files. All values are
// resolved once at startup and treated as read-only afterwards; nothing in
// this package mutates process-wide state after Load returns.
package config

import "fmt"

// LayerID identifies one stage of the proof-composition pipeline.
type LayerID uint8

const (
	// LayerInner is the innermost (super circuit) layer proving chunk
	// execution traces.
	LayerInner LayerID = iota
	// Layer1 is the wide compression layer over the inner snark.
	Layer1
	// Layer2 is the thin compression layer producing the chunk proof.
	Layer2
	// Layer3 aggregates multiple chunk snarks into one batch snark.
	Layer3
	// Layer4 is the thin compression layer producing the batch proof.
	Layer4
	// Layer5 recurses over a bundle of batch snarks.
	Layer5
	// Layer6 is the thin compression layer producing the EVM-verifiable
	// bundle proof.
	Layer6
)

// AllLayers lists every pipeline layer in proving order.
var AllLayers = []LayerID{LayerInner, Layer1, Layer2, Layer3, Layer4, Layer5, Layer6}

// String returns the canonical string identifier of the layer. The
// identifiers appear in cache file names and must stay stable.
func (l LayerID) String() string {
	switch l {
	case LayerInner:
		return "inner"
	case Layer1:
		return "layer1"
	case Layer2:
		return "layer2"
	case Layer3:
		return "layer3"
	case Layer4:
		return "layer4"
	case Layer5:
		return "layer5"
	case Layer6:
		return "layer6"
	default:
		return fmt.Sprintf("layer?(%d)", uint8(l))
	}
}

// HasAccumulator reports whether snarks generated at this layer carry a
// commitment-scheme accumulator. Every layer composed on top of the inner
// layer does.
func (l LayerID) HasAccumulator() bool {
	return l != LayerInner
}

// HasShapeConfig reports whether the layer reads a circuit-shape config file.
// The inner super circuit is shaped by its own witness and has none.
func (l LayerID) HasShapeConfig() bool {
	return l != LayerInner
}

// ConfigFilename returns the asset file name holding the layer's shape
// parameters, e.g. "layer3.config".
func (l LayerID) ConfigFilename() string {
	return l.String() + ".config"
}
