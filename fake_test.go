package lazytx_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sbowman/lazytx"
)

var errBoom = errors.New("boom")

// Statements the fake session understands.
const (
	sqlInsertName = "insert into names(name) values($1) returning id"
	sqlSelectName = "select name from names where id = $1"
	sqlEcho       = "select unnest($1)"
	sqlFail       = "select broken"
	sqlTouch      = "update names set touched = true"
)

// store is the committed state shared by every session of a fakeSource.
type store struct {
	mu    sync.Mutex
	names map[int64]string
	next  int64
}

func (st *store) nextID() int64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.next++
	return st.next
}

func (st *store) get(id int64) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	name, ok := st.names[id]
	return name, ok
}

func (st *store) merge(pending map[int64]string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, name := range pending {
		st.names[id] = name
	}
}

// fakeSource hands out fakeSessions sharing one store.
type fakeSource struct {
	store     *store
	commitErr error

	mu       sync.Mutex
	sessions []*fakeSession
}

func newSource() *fakeSource {
	return &fakeSource{store: &store{names: make(map[int64]string)}}
}

func (src *fakeSource) Session(_ context.Context) (lazytx.Session, error) {
	return src.open(), nil
}

func (src *fakeSource) open() *fakeSession {
	session := &fakeSession{
		store:      src.store,
		pending:    make(map[int64]string),
		autocommit: true,
		commitErr:  src.commitErr,
	}

	src.mu.Lock()
	src.sessions = append(src.sessions, session)
	src.mu.Unlock()

	return session
}

// fakeSession records every operation it is asked to run and emulates a single
// `names` table with per-session uncommitted writes.
type fakeSession struct {
	lazytx.Pending

	store      *store
	pending    map[int64]string
	autocommit bool
	commitErr  error

	log        []string
	statements []*lazytx.Statement
	committed  bool
	rolledBack bool
	closed     bool
}

func (s *fakeSession) Select(_ context.Context, handle lazytx.Handler) error {
	return s.run("select", handle)
}

func (s *fakeSession) Insert(_ context.Context, handle lazytx.Handler) error {
	return s.run("insert", handle)
}

func (s *fakeSession) Update(_ context.Context, handle lazytx.Handler) error {
	return s.run("update", handle)
}

func (s *fakeSession) Call(_ context.Context, handle lazytx.Handler) error {
	return s.run("call", handle)
}

func (s *fakeSession) Execute(_ context.Context) error {
	return s.run("execute", nil)
}

func (s *fakeSession) Autocommit(enabled bool) {
	s.log = append(s.log, fmt.Sprintf("autocommit %t", enabled))
	s.autocommit = enabled
}

func (s *fakeSession) Commit(_ context.Context) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}

	if s.commitErr != nil {
		return s.commitErr
	}

	s.log = append(s.log, "commit")
	s.store.merge(s.pending)
	s.committed = true
	s.closed = true

	return nil
}

func (s *fakeSession) Rollback(_ context.Context) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}

	s.log = append(s.log, "rollback")
	s.pending = make(map[int64]string)
	s.rolledBack = true
	s.closed = true

	return nil
}

func (s *fakeSession) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}

	return s.Rollback(ctx)
}

func (s *fakeSession) Closed() bool {
	return s.closed
}

func (s *fakeSession) run(op string, handle lazytx.Handler) error {
	if s.closed {
		return lazytx.ErrSessionClosed
	}

	stmt, err := s.Take()
	if err != nil {
		return err
	}

	s.log = append(s.log, op+": "+stmt.SQL)
	s.statements = append(s.statements, stmt)

	var rows [][]any

	switch stmt.SQL {
	case sqlInsertName:
		id := s.store.nextID()
		name, _ := stmt.Args[0].(string)
		if s.autocommit {
			s.store.merge(map[int64]string{id: name})
		} else {
			s.pending[id] = name
		}
		rows = [][]any{{id}}

	case sqlSelectName:
		id, _ := stmt.Args[0].(int64)
		if name, ok := s.lookup(id); ok {
			rows = [][]any{{name}}
		}

	case sqlEcho:
		for _, arg := range stmt.Args {
			rows = append(rows, []any{arg})
		}

	case sqlFail:
		return errBoom
	}

	if handle == nil {
		return nil
	}

	return handle(&fakeRows{rows: rows}, stmt)
}

func (s *fakeSession) lookup(id int64) (string, bool) {
	if name, ok := s.pending[id]; ok {
		return name, true
	}

	return s.store.get(id)
}

// fakeRows iterates over in-memory rows.
type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}

	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) > len(row) {
		return fmt.Errorf("scan %d columns from a row of %d", len(dest), len(row))
	}

	for idx, d := range dest {
		target := reflect.ValueOf(d).Elem()
		value := reflect.ValueOf(row[idx])

		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("cannot scan %s into %s", value.Type(), target.Type())
		}

		target.Set(value)
	}

	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

func (r *fakeRows) Err() error {
	return nil
}

// Queries against the fake `names` table.

func insertName(name string) *lazytx.Query[int64] {
	return lazytx.MustBuild(lazytx.Insert().SQL(sqlInsertName).Set(name), lazytx.Single[int64]())
}

func selectName(id int64) *lazytx.Query[lazytx.Option[string]] {
	return lazytx.MustBuild(lazytx.Select().SQL(sqlSelectName).Set(id), lazytx.Optional[string]())
}

func failing() *lazytx.Query[int64] {
	return lazytx.MustBuild(lazytx.Select().SQL(sqlFail), lazytx.Single[int64]())
}

// run prepares and executes e against s, for tests that drive a session by hand.
func run[R any](s lazytx.Session, e lazytx.Effect[R]) (R, error) {
	return e.Prepare(s).Execute(context.Background())
}
