package lazytx

// Pair holds the results of two effects.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds the results of three effects.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad holds the results of four effects.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Quint holds the results of five effects.
type Quint[A, B, C, D, E any] struct {
	First  A
	Second B
	Third  C
	Fourth D
	Fifth  E
}

// Collect2 runs a, builds the second effect from a's result with fb, runs it, and pairs
// the two results.  Everything runs in argument order against one session; nothing
// runs in parallel.
func Collect2[A, B any](a Effect[A], fb func(A) Effect[B]) *Chain[Pair[A, B]] {
	return Bind(a, func(first A) Effect[Pair[A, B]] {
		return Map(fb(first), func(second B) Pair[A, B] {
			return Pair[A, B]{First: first, Second: second}
		})
	})
}

// Both runs a and then b, and pairs their results.
func Both[A, B any](a Effect[A], b Effect[B]) *Chain[Pair[A, B]] {
	return Collect2(a, func(A) Effect[B] {
		return b
	})
}

// Collect3 extends [Collect2] with a third effect built from the first two results.
func Collect3[A, B, C any](
	a Effect[A],
	fb func(A) Effect[B],
	fc func(A, B) Effect[C],
) *Chain[Triple[A, B, C]] {
	return Bind(Collect2(a, fb), func(p Pair[A, B]) Effect[Triple[A, B, C]] {
		return Map(fc(p.First, p.Second), func(third C) Triple[A, B, C] {
			return Triple[A, B, C]{First: p.First, Second: p.Second, Third: third}
		})
	})
}

// Collect4 extends [Collect3] with a fourth effect built from the first three results.
func Collect4[A, B, C, D any](
	a Effect[A],
	fb func(A) Effect[B],
	fc func(A, B) Effect[C],
	fd func(A, B, C) Effect[D],
) *Chain[Quad[A, B, C, D]] {
	return Bind(Collect3(a, fb, fc), func(t Triple[A, B, C]) Effect[Quad[A, B, C, D]] {
		return Map(fd(t.First, t.Second, t.Third), func(fourth D) Quad[A, B, C, D] {
			return Quad[A, B, C, D]{First: t.First, Second: t.Second, Third: t.Third, Fourth: fourth}
		})
	})
}

// Collect5 extends [Collect4] with a fifth effect built from the first four results.
func Collect5[A, B, C, D, E any](
	a Effect[A],
	fb func(A) Effect[B],
	fc func(A, B) Effect[C],
	fd func(A, B, C) Effect[D],
	fe func(A, B, C, D) Effect[E],
) *Chain[Quint[A, B, C, D, E]] {
	return Bind(Collect4(a, fb, fc, fd), func(q Quad[A, B, C, D]) Effect[Quint[A, B, C, D, E]] {
		return Map(fe(q.First, q.Second, q.Third, q.Fourth), func(fifth E) Quint[A, B, C, D, E] {
			return Quint[A, B, C, D, E]{
				First:  q.First,
				Second: q.Second,
				Third:  q.Third,
				Fourth: q.Fourth,
				Fifth:  fifth,
			}
		})
	})
}
