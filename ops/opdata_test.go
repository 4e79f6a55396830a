package ops

import (
	"testing"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseValidate(t *testing.T) {
	b := NewBase(ocio.F32BitDepth, ocio.F32BitDepth, nil)
	require.NoError(t, b.Validate())

	b = NewBase(ocio.UnknownBitDepth, ocio.F32BitDepth, nil)
	err := b.Validate()
	require.Error(t, err)
	var cfg *ocio.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.ErrorContains(t, err, "input bit depth")

	b = NewBase(ocio.F32BitDepth, ocio.UnknownBitDepth, nil)
	assert.ErrorContains(t, b.Validate(), "output bit depth")
}

func TestBaseEqual(t *testing.T) {
	a := NewBase(ocio.Uint8BitDepth, ocio.Uint10BitDepth, nil)
	b := NewBase(ocio.Uint8BitDepth, ocio.Uint10BitDepth, nil)
	assert.True(t, a.Equal(&b))

	// metadata plays no part
	b.SetName("named")
	assert.True(t, a.Equal(&b))

	c := NewBase(ocio.Uint8BitDepth, ocio.Uint12BitDepth, nil)
	assert.False(t, a.Equal(&c))
}

func TestBaseMetadataOwnership(t *testing.T) {
	md := NewFormatMetadata(MetadataRoot)
	md.SetName("shared")
	a := NewBase(ocio.F32BitDepth, ocio.F32BitDepth, &md)
	md.SetName("mutated")
	assert.Equal(t, "shared", a.Name())
	a.SetID("uid1")
	assert.Equal(t, "", md.ID())
}
