package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
)

func TestSessionContext_AppendOrder(t *testing.T) {
	s := NewSessionContext()
	assert.NotEmpty(t, s.ID)

	s.Append(entities.RoleUser, "one")
	s.Append(entities.RoleAssistant, "two")
	s.Append(entities.RoleUser, "three")

	turns := s.Snapshot()
	require.Len(t, turns, 3)
	assert.Equal(t, "one", turns[0].Text)
	assert.Equal(t, "two", turns[1].Text)
	assert.Equal(t, "three", turns[2].Text)
}

func TestSessionContext_SnapshotIsCopy(t *testing.T) {
	s := NewSessionContext()
	s.Append(entities.RoleUser, "original")

	snap := s.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "original", s.Snapshot()[0].Text)
}

func TestSessions_GetCreatesAndReuses(t *testing.T) {
	reg := NewSessions()

	a := reg.Get("caller-1")
	a.Append(entities.RoleUser, "hello")

	b := reg.Get("caller-1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, b.Len())

	c := reg.Get("caller-2")
	assert.NotSame(t, a, c)
	assert.Zero(t, c.Len())
}

func TestSessions_EmptyIDGeneratesOne(t *testing.T) {
	reg := NewSessions()

	a := reg.Get("")
	b := reg.Get("")
	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, a, reg.Get(a.ID))
}
