// Package pure provides the algebraic value types shared by programs and
// interpreters: Result, Option, Validated and Async.
//
// Every type is an immutable value. Combinators are plain generic functions
// (Go methods cannot introduce type parameters), they never panic and they
// never touch the outside world. A failure is ordinary data here: it flows
// through Map and FlatMap untouched until someone folds it.
//
//	r := pure.FlatMap(parseID(raw), lookup)
//	name := pure.Fold(r,
//	    func(u User) string { return u.Name },
//	    func(err error) string { return "anonymous" },
//	)
package pure
