package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatctx/internal/core"
)

func TestGraphAddAssignsSequentialIDs(t *testing.T) {
	g := NewGraph()

	for i := 0; i < 3; i++ {
		id := g.Add(&core.Exchange{UserMessage: "q"})
		assert.Equal(t, i, id)
	}
	assert.Equal(t, 3, g.Len())
	assert.Nil(t, g.Node(3))
	assert.Nil(t, g.Node(-1))
}

func TestGraphConnect(t *testing.T) {
	g := NewGraph()
	a := g.Add(&core.Exchange{})
	b := g.Add(&core.Exchange{})

	g.Connect(b, a, 0.9)

	require.Len(t, g.Node(b).References, 1)
	assert.Equal(t, core.Link{To: a, Weight: 0.9}, g.Node(b).References[0])
	assert.Equal(t, []int{b}, g.Node(a).ReferencedBy)

	// Self and out-of-range links are ignored.
	g.Connect(a, a, 1.0)
	g.Connect(a, 99, 1.0)
	assert.Empty(t, g.Node(a).References)
}

func TestGraphRelated(t *testing.T) {
	g := NewGraph()
	a := g.Add(&core.Exchange{})
	b := g.Add(&core.Exchange{})
	c := g.Add(&core.Exchange{})
	d := g.Add(&core.Exchange{})

	// d -> c -> b -> a, plus a cycle c -> d.
	g.Connect(b, a, 0.5)
	g.Connect(c, b, 0.5)
	g.Connect(c, d, 0.5)
	g.Connect(d, c, 0.5)

	assert.Equal(t, []int{d, c, b, a}, g.Related(d, 3))
	assert.Equal(t, []int{d, c, b}, g.Related(d, 2))
	assert.Equal(t, []int{a}, g.Related(a, 5))
	assert.Nil(t, g.Related(42, 1))
}
