package gcode

import (
	"testing"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_Run(t *testing.T) {
	vm := NewVM()

	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 1}, {W: 'X', Arg: 10}, {W: 'Y', Arg: 5}, {W: 'F', Arg: 800}}))
	assert.Equal(t, coord.Point{X: 10, Y: 5}, vm.MPos())
	assert.Equal(t, 800.0, vm.Feed())

	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 91}}))
	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 1}, {W: 'X', Arg: -2}}))
	assert.Equal(t, coord.Point{X: 8, Y: 5}, vm.MPos())

	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 90}}))
	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 20}}))
	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 1}, {W: 'X', Arg: 1}}))
	assert.InDelta(t, 25.4, vm.MPos().X, 1e-9)
}

func TestVM_Tool(t *testing.T) {
	vm := NewVM()
	assert.False(t, vm.ToolOn())
	require.NoError(t, vm.Run(Block{{W: 'M', Arg: 3}}))
	assert.True(t, vm.ToolOn())
	require.NoError(t, vm.Run(Block{{W: 'M', Arg: 5}}))
	assert.False(t, vm.ToolOn())
}

func TestVM_SetZero(t *testing.T) {
	vm := NewVM()
	vm.SetMPos(coord.Point{X: 100, Y: 20})

	p := &Program{}
	p.SetZero()
	require.NoError(t, vm.Run(p.Blocks()[0]))
	assert.Equal(t, coord.Point{}, vm.WPos())

	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 1}, {W: 'X', Arg: 5}}))
	assert.Equal(t, coord.Point{X: 105, Y: 20}, vm.MPos())
}

func TestVM_Dwell(t *testing.T) {
	vm := NewVM()
	require.NoError(t, vm.Run(Block{{W: 'G', Arg: 4}, {W: 'P', Arg: 1.5}}))
	assert.Equal(t, 1.5, vm.LastDwell())
	assert.Equal(t, coord.Point{}, vm.MPos())
}

func TestVM_Unsupported(t *testing.T) {
	vm := NewVM()
	assert.Error(t, vm.Run(Block{{W: 'G', Arg: 2}, {W: 'X', Arg: 1}}))
	assert.Error(t, vm.Run(Block{{W: 'X', Arg: 1}, {W: 'X', Arg: 2}}))
}
