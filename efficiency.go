/*
Copyright © 2018 the opcsim authors.
This file is part of opcsim.

opcsim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

opcsim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with opcsim.  If not, see <http://www.gnu.org/licenses/>.
*/

package opcsim

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// A CountingEfficiency gives the fraction of particles of diameter dp [µm]
// that an instrument detects.
type CountingEfficiency interface {
	Efficiency(dp float64) float64
}

// ConstantEfficiency detects the same fraction of particles at every size.
type ConstantEfficiency float64

// Efficiency implements CountingEfficiency.
func (c ConstantEfficiency) Efficiency(float64) float64 { return float64(c) }

// LogisticEfficiency is a sigmoid counting efficiency curve
// that is 0.5 at D50 [µm]. Width is the spread of the transition in
// ln(Dp) units; smaller values give a sharper cutoff.
type LogisticEfficiency struct {
	D50, Width float64
}

// Efficiency implements CountingEfficiency.
func (l LogisticEfficiency) Efficiency(dp float64) float64 {
	return 1 / (1 + math.Exp(-(math.Log(dp)-math.Log(l.D50))/l.Width))
}

// ExpressionEfficiency is a counting efficiency curve given as an
// arithmetic expression of the particle diameter dp [µm].
type ExpressionEfficiency struct {
	expr *govaluate.EvaluableExpression
	src  string
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("opcsim: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("opcsim: invalid argument %v for function '%s'", args[0], name)
		}
		return f(x), nil
	}
}

func twoArgs(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("opcsim: got %d arguments for function '%s', but needs 2", len(args), name)
		}
		a, aok := args[0].(float64)
		b, bok := args[1].(float64)
		if !aok || !bok {
			return nil, fmt.Errorf("opcsim: invalid arguments %v for function '%s'", args, name)
		}
		return f(a, b), nil
	}
}

var efficiencyFunctions = map[string]govaluate.ExpressionFunction{
	"exp":   oneArg("exp", math.Exp),
	"log":   oneArg("log", math.Log),
	"log10": oneArg("log10", math.Log10),
	"tanh":  oneArg("tanh", math.Tanh),
	"erf":   oneArg("erf", math.Erf),
	"pow":   twoArgs("pow", math.Pow),
	"min":   twoArgs("min", math.Min),
	"max":   twoArgs("max", math.Max),
}

// NewExpressionEfficiency compiles a counting efficiency expression such as
// "1 / (1 + pow(0.3 / dp, 4))". The only variable is dp. The functions
// exp, log, log10, tanh, erf, pow, min and max are available.
func NewExpressionEfficiency(expression string) (*ExpressionEfficiency, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, efficiencyFunctions)
	if err != nil {
		return nil, fmt.Errorf("opcsim: counting efficiency %q: %v: %w", expression, err, ErrInvalidParameter)
	}
	for _, v := range expr.Vars() {
		if v != "dp" {
			return nil, fmt.Errorf("opcsim: counting efficiency %q: unknown variable %q; the only valid variable is dp: %w",
				expression, v, ErrInvalidParameter)
		}
	}
	e := &ExpressionEfficiency{expr: expr, src: expression}
	if _, err := e.evaluate(1); err != nil {
		return nil, fmt.Errorf("opcsim: counting efficiency %q: %v: %w", expression, err, ErrInvalidParameter)
	}
	return e, nil
}

func (e *ExpressionEfficiency) evaluate(dp float64) (float64, error) {
	v, err := e.expr.Evaluate(map[string]interface{}{"dp": dp})
	if err != nil {
		return math.NaN(), err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return math.NaN(), fmt.Errorf("expression result %v is not a number", v)
	}
}

// Efficiency implements CountingEfficiency. Evaluation failures give NaN,
// which instruments report as ErrNonFinite.
func (e *ExpressionEfficiency) Efficiency(dp float64) float64 {
	v, _ := e.evaluate(dp)
	return v
}

func (e *ExpressionEfficiency) String() string { return e.src }

// ParseEfficiency interprets s as a constant efficiency if it is a number
// and as an expression of dp otherwise.
func ParseEfficiency(s string) (CountingEfficiency, error) {
	e, err := NewExpressionEfficiency(s)
	if err != nil {
		return nil, err
	}
	if len(e.expr.Vars()) == 0 {
		v, _ := e.evaluate(1)
		return ConstantEfficiency(v), nil
	}
	return e, nil
}
