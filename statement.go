package lazytx

// Statement is the SQL and positional arguments a [Session] is about to run.
type Statement struct {
	SQL  string
	Args []any
}

// Preparation is a hook run against a statement immediately before it executes.  It may
// inspect or adjust the statement; returning an error aborts the statement.
type Preparation func(stmt *Statement) error

// Array marks a parameter whose payload is an entire array or slice, bound as a single
// value rather than spread across several parameters.  Sessions unwrap it according to
// what their driver supports.
type Array struct {
	Elements any
}

// Pending accumulates the statement a [Session] is about to run.  Session
// implementations embed it to provide SQL, Set and Prepare.
type Pending struct {
	stmt  Statement
	hooks []Preparation
}

// SQL starts a new pending statement.
func (p *Pending) SQL(query string) {
	p.stmt = Statement{SQL: query}
	p.hooks = nil
}

// Set binds the next positional parameter.
func (p *Pending) Set(value any) {
	p.stmt.Args = append(p.stmt.Args, value)
}

// Prepare registers a hook to run before the statement executes.
func (p *Pending) Prepare(hook Preparation) {
	p.hooks = append(p.hooks, hook)
}

// Take returns the pending statement after running its hooks in registration order, and
// resets the pending state.  The statement is reset even when a hook fails.
func (p *Pending) Take() (*Statement, error) {
	stmt := p.stmt
	hooks := p.hooks

	p.stmt = Statement{}
	p.hooks = nil

	for _, hook := range hooks {
		if err := hook(&stmt); err != nil {
			return nil, err
		}
	}

	return &stmt, nil
}
