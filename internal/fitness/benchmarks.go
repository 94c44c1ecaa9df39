package fitness

import "math"

// Built-in objectives are minimization benchmarks; they are registered
// negated so that a larger fitness is always better.
func init() {
	for _, e := range []Evaluator{
		Func{Label: "sphere", Fn: negate(Sphere)},
		Func{Label: "rastrigin", Fn: negate(Rastrigin)},
		Func{Label: "rosenbrock", Fn: negate(Rosenbrock)},
		Func{Label: "ackley", Fn: negate(Ackley)},
	} {
		if err := Register(e); err != nil {
			panic(err)
		}
	}
}

func negate(fn func([]float64) float64) func([]float64) float64 {
	return func(x []float64) float64 {
		return -fn(x)
	}
}

func Sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func Rastrigin(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

func Rosenbrock(x []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

func Ackley(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	n := float64(len(x))
	sumSq, sumCos := 0.0, 0.0
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
}
