package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vocaltales/storyteller/pkg/story"
)

type StoreTestSuite struct {
	suite.Suite
	newStore func(t *testing.T) Store
	store    Store
}

func (s *StoreTestSuite) SetupTest() {
	s.store = s.newStore(s.T())
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func(*testing.T) Store {
		return NewMemoryStore()
	}})
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func(t *testing.T) Store {
		store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "sessions.db"))
		require.NoError(t, err)
		return store
	}})
}

func (s *StoreTestSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestSaveAndGet() {
	ctx := context.Background()
	sess := New("GB Female")
	sess.History = story.NewHistory("prompt").
		Append(story.Turn{Role: story.RoleUser, Content: "a dragon in a cave"}).
		Append(story.Turn{Role: story.RoleAssistant, Content: "Once upon a time..."})

	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal("GB Female", got.Voice)
	s.Equal(sess.History, got.History)
	s.Equal(sess.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func (s *StoreTestSuite) TestSaveOverwrites() {
	ctx := context.Background()
	sess := New("US Male")
	s.Require().NoError(s.store.Save(ctx, sess))

	sess.Voice = "AU Male"
	sess.History = story.NewHistory("prompt")
	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal("AU Male", got.Voice)
	s.Len(got.History, 1)
}

func (s *StoreTestSuite) TestDelete() {
	ctx := context.Background()
	sess := New("US Male")
	s.Require().NoError(s.store.Save(ctx, sess))
	s.Require().NoError(s.store.Delete(ctx, sess.ID))

	_, err := s.store.Get(ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestGetReturnsCopy() {
	ctx := context.Background()
	sess := New("US Male")
	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	got.Voice = "changed"

	again, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal("US Male", again.Voice)
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	a, b := New("x"), New("x")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.History)
}
