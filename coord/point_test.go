package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_Add(t *testing.T) {
	a := Point{X: 1, Y: 2}
	b := Point{X: 4, Y: 5}

	assert.Equal(t, Point{X: 5, Y: 7}, a.Add(b))
	assert.Equal(t, Point{X: -3, Y: -3}, a.Sub(b))
}

func TestPoint_Distance(t *testing.T) {
	dist := Point{X: 1, Y: 2}.Distance(Point{X: 4, Y: 5})
	assert.InEpsilon(t, 4.24264, dist, .01)
}

func TestMidpoint(t *testing.T) {
	a := Point{X: 40, Y: 0}
	b := Point{X: 65, Y: 0}
	assert.Equal(t, Point{X: 52.5, Y: 0}, Midpoint(a, b))

	pairs := [][2]Point{
		{{X: 1, Y: 2}, {X: 3, Y: 4}},
		{{X: -10.5, Y: 7.25}, {X: 0.125, Y: -3}},
		{{}, {X: 100, Y: -100}},
	}
	for _, p := range pairs {
		assert.Equal(t, Midpoint(p[0], p[1]), Midpoint(p[1], p[0]))
	}
}
