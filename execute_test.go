package lazytx_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sbowman/lazytx"
	"github.com/stretchr/testify/assert"
)

// Does Execute turn off autocommit, run the effect and commit?
func TestExecute(t *testing.T) {
	assert := assert.New(t)
	src := newSource()

	id, err := lazytx.Execute(t.Context(), src, insertName("MyName"))
	assert.Nil(err)
	assert.Equal(int64(1), id)

	if assert.Len(src.sessions, 1) {
		session := src.sessions[0]
		assert.Equal([]string{"autocommit false", "insert: " + sqlInsertName, "commit"}, session.log)
		assert.True(session.committed)
		assert.True(session.Closed())
	}

	name, err := lazytx.Execute(t.Context(), src, selectName(1))
	assert.Nil(err)
	assert.Equal(lazytx.Some("MyName"), name)
}

// Does a failing effect roll back everything the chain did?
func TestExecuteRollsBack(t *testing.T) {
	assert := assert.New(t)
	src := newSource()

	chain := lazytx.Then(lazytx.Then(insertName("A"), insertName("B")), failing())

	_, err := lazytx.Execute(t.Context(), src, chain)
	assert.ErrorIs(err, errBoom)

	session := src.sessions[0]
	assert.True(session.rolledBack)
	assert.False(session.committed)

	for id := int64(1); id <= 2; id++ {
		name, err := lazytx.Execute(t.Context(), src, selectName(id))
		assert.Nil(err)
		assert.False(name.Present())
	}
}

// Is a session closed by the effect itself tolerated at commit?
func TestExecuteAlreadyClosed(t *testing.T) {
	assert := assert.New(t)
	src := newSource()

	chain := lazytx.Then(lazytx.Then(insertName("A"), lazytx.Rollback()), lazytx.Pure("done"))

	result, err := lazytx.Execute(t.Context(), src, chain)
	assert.Nil(err)
	assert.Equal("done", result)

	session := src.sessions[0]
	assert.True(session.rolledBack)
	assert.False(session.committed)

	name, err := lazytx.Execute(t.Context(), src, selectName(1))
	assert.Nil(err)
	assert.False(name.Present())
}

// Are other commit failures reported?
func TestExecuteCommitFailure(t *testing.T) {
	assert := assert.New(t)

	src := newSource()
	src.commitErr = errors.New("serialization failure")

	_, err := lazytx.Execute(t.Context(), src, insertName("A"))
	assert.ErrorIs(err, src.commitErr)
	assert.Contains(err.Error(), "commit failed")
	assert.True(src.sessions[0].rolledBack)
}

// Do statements after an in-chain rollback fail?
func TestExecuteAfterRollback(t *testing.T) {
	assert := assert.New(t)

	chain := lazytx.Then(lazytx.Rollback(), insertName("A"))

	_, err := lazytx.Execute(t.Context(), newSource(), chain)
	assert.ErrorIs(err, lazytx.ErrSessionClosed)
}

type brokenSource struct{}

func (brokenSource) Session(context.Context) (lazytx.Session, error) {
	return nil, errBoom
}

func TestExecuteNoSession(t *testing.T) {
	assert := assert.New(t)

	_, err := lazytx.Execute(t.Context(), brokenSource{}, lazytx.Pure(1))
	assert.ErrorIs(err, errBoom)
}

// Does the scenario from the package documentation hold: uncommitted inserts are
// visible in the same session, gone after a rollback, and ids keep counting?
func TestManualSession(t *testing.T) {
	assert := assert.New(t)
	src := newSource()

	session := src.open()
	session.Autocommit(false)

	id, err := run(session, insertName("MyName"))
	assert.Nil(err)
	assert.Equal(int64(1), id)

	name, err := run(session, selectName(id))
	assert.Nil(err)
	assert.Equal(lazytx.Some("MyName"), name)

	assert.Nil(session.Rollback(t.Context()))

	name, err = lazytx.Execute(t.Context(), src, selectName(id))
	assert.Nil(err)
	assert.Equal(lazytx.None[string](), name)

	id, err = lazytx.Execute(t.Context(), src, insertName("MyName"))
	assert.Nil(err)
	assert.Equal(int64(2), id)

	name, err = lazytx.Execute(t.Context(), src, selectName(id))
	assert.Nil(err)
	assert.Equal(lazytx.Some("MyName"), name)
}

func TestExecuteAll(t *testing.T) {
	assert := assert.New(t)
	src := newSource()

	effects := []lazytx.Effect[string]{
		lazytx.Pure("a"),
		lazytx.Map(insertName("b"), func(int64) string { return "b" }),
		lazytx.Pure("c"),
	}

	results, err := lazytx.ExecuteAll(t.Context(), lazytx.DefaultOptions(), src, effects)
	assert.Nil(err)
	assert.Equal([]string{"a", "b", "c"}, results)
	assert.Len(src.sessions, 3)

	for _, session := range src.sessions {
		assert.True(session.committed)
	}
}

func TestExecuteAllError(t *testing.T) {
	assert := assert.New(t)

	effects := []lazytx.Effect[int64]{lazytx.Pure(int64(1)), failing()}

	results, err := lazytx.ExecuteAll(t.Context(), lazytx.DefaultOptions(), newSource(), effects)
	assert.Nil(results)
	assert.ErrorIs(err, errBoom)

	var ierr *lazytx.IndexedError
	if assert.True(errors.As(err, &ierr)) {
		assert.Equal(1, ierr.Index)
	}
}

func TestExecuteLogging(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	options := lazytx.DefaultOptions().WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	_, err := lazytx.ExecuteWith(t.Context(), options, newSource(), insertName("A"))
	assert.Nil(err)
	assert.Contains(buf.String(), `"execution":`)
	assert.Contains(buf.String(), "Committed")
}

func TestDefaultOptionsFromEnv(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(lazytx.EnvLog, "warn")
	assert.Equal(zerolog.WarnLevel, lazytx.DefaultOptions().Logger.GetLevel())

	t.Setenv(lazytx.EnvLog, "")
	assert.Equal(zerolog.Disabled, lazytx.DefaultOptions().Logger.GetLevel())
}

// driverSession reports commits after close the way database/sql does.
type driverSession struct {
	*fakeSession
}

func (s driverSession) Commit(ctx context.Context) error {
	if s.Closed() {
		return sql.ErrTxDone
	}

	return s.fakeSession.Commit(ctx)
}

type driverSource struct {
	*fakeSource
}

func (src driverSource) Session(context.Context) (lazytx.Session, error) {
	return driverSession{src.open()}, nil
}

// Is a session the effect closed tolerated even when its Commit reports something other
// than ErrSessionClosed?
func TestExecuteClosedSession(t *testing.T) {
	assert := assert.New(t)
	src := driverSource{newSource()}

	chain := lazytx.Then(lazytx.Then(insertName("A"), lazytx.Rollback()), lazytx.Pure("done"))

	result, err := lazytx.Execute(t.Context(), src, chain)
	assert.Nil(err)
	assert.Equal("done", result)

	session := src.sessions[0]
	assert.True(session.rolledBack)
	assert.False(session.committed)
	assert.NotContains(session.log, "commit")
}
