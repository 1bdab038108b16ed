package statvalue

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v, or nil when v is empty.
func String(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Divide returns a/b. A zero denominator yields nil, never zero and never a panic.
func Divide(a, b float64) *float64 {
	if b == 0 {
		return nil
	}
	out := a / b
	return &out
}

// DivideOpt is Divide over optional operands; an undefined operand yields nil.
func DivideOpt(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Divide(*a, *b)
}

// DivideInts divides two counts.
func DivideInts(a, b int) *float64 {
	return Divide(float64(a), float64(b))
}

// DivideIntOpt divides a count by an optional count.
func DivideIntOpt(a int, b *int) *float64 {
	if b == nil {
		return nil
	}
	return Divide(float64(a), float64(*b))
}

// IntToFloat widens an optional count.
func IntToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	out := float64(*v)
	return &out
}

// Mean returns the arithmetic mean of values, nil for an empty sample.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return Divide(sum, float64(len(values)))
}

// Share returns the fraction of true flags, nil for an empty sample.
func Share(flags []bool) *float64 {
	hits := 0
	for _, f := range flags {
		if f {
			hits++
		}
	}
	return DivideInts(hits, len(flags))
}
