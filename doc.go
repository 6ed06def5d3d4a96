// Package lazytx builds database operations as values and runs them later, in order,
// inside a single transaction.
//
// A [Query] describes one statement: its SQL, parameters, preparation hooks and the
// [Outcome] that turns its rows into a result.  Build one with the staged builders:
//
//	insert := lazytx.MustBuild(
//		lazytx.Insert().SQL("insert into people(name) values($1) returning id").Set("jdoe"),
//		lazytx.Single[int64](),
//	)
//
// Nothing runs when a query is built.  Queries, and any other [Effect], are combined
// into a [Chain] with [Bind], [Then], [Apply] and [Map].  Every link of a chain runs
// against the same [Session], so later links see the uncommitted work of earlier ones:
//
//	lookup := lazytx.Bind(insert, func(id int64) lazytx.Effect[string] {
//		return selectName(id)
//	})
//
// Finally, [Execute] acquires a session from a [Source], disables autocommit, runs the
// chain and commits:
//
//	name, err := lazytx.Execute(ctx, db, lookup)
//
// The `std`, `postgres` and `sqlite` packages provide [Source] and [Session]
// implementations for database/sql, pgx and SQLite3.
package lazytx
