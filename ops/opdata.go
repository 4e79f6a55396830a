// Package ops holds the pieces shared by every color transform node: the
// OpData contract, recorded bit depths and descriptive metadata, and a
// chain evaluator that pushes RGB triplets through a list of transformers.
package ops

import (
	ocio "github.com/IXgSoul/OpenColorIO"
)

// OpData is the capability surface of a transform node. Implementations
// store their content in whatever form suits them; the contract only fixes
// how depths, metadata and identity questions are answered.
type OpData interface {
	Validate() error
	InputBitDepth() ocio.BitDepth
	OutputBitDepth() ocio.BitDepth
	SetInputBitDepth(ocio.BitDepth) error
	SetOutputBitDepth(ocio.BitDepth) error
	Metadata() *FormatMetadata

	// IsNoOp reports whether the node passes colors through untouched.
	// IsIdentity reports whether its content encodes the identity mapping,
	// which is a weaker statement: an identity node can still clamp.
	IsNoOp() bool
	IsIdentity() bool

	// HasChannelCrosstalk reports whether one output channel can depend on
	// more than one input channel.
	HasChannelCrosstalk() bool
}

// Base carries the storage every node kind shares: the recorded input and
// output bit depths and the metadata tree. Node types embed it and provide
// their own depth setters on top of the record-only ones below.
type Base struct {
	inDepth  ocio.BitDepth
	outDepth ocio.BitDepth
	metadata FormatMetadata
}

// NewBase copies metadata deeply so the node owns its tree. A nil metadata
// yields a fresh ROOT element.
func NewBase(in, out ocio.BitDepth, metadata *FormatMetadata) Base {
	b := Base{inDepth: in, outDepth: out}
	if metadata != nil {
		b.metadata = metadata.Clone()
	} else {
		b.metadata = NewFormatMetadata(MetadataRoot)
	}
	return b
}

func (b *Base) InputBitDepth() ocio.BitDepth  { return b.inDepth }
func (b *Base) OutputBitDepth() ocio.BitDepth { return b.outDepth }

// SetInputBitDepth and SetOutputBitDepth only record the depth. Node types
// wrap them with whatever content rescaling they need; calling them
// directly on the embedded Base changes the recorded depth without touching
// content.
func (b *Base) SetInputBitDepth(in ocio.BitDepth)   { b.inDepth = in }
func (b *Base) SetOutputBitDepth(out ocio.BitDepth) { b.outDepth = out }

func (b *Base) Metadata() *FormatMetadata { return &b.metadata }

func (b *Base) Name() string        { return b.metadata.Name() }
func (b *Base) SetName(name string) { b.metadata.SetName(name) }
func (b *Base) ID() string          { return b.metadata.ID() }
func (b *Base) SetID(id string)     { b.metadata.SetID(id) }

func (b *Base) Validate() error {
	if b.inDepth == ocio.UnknownBitDepth {
		return ocio.ConfigErrorf("op is missing an input bit depth")
	}
	if b.outDepth == ocio.UnknownBitDepth {
		return ocio.ConfigErrorf("op is missing an output bit depth")
	}
	return nil
}

// Equal compares the recorded depths. Metadata is descriptive only and two
// nodes differing in nothing else are interchangeable, so it is excluded.
func (b *Base) Equal(o *Base) bool {
	return b.inDepth == o.inDepth && b.outDepth == o.outDepth
}
