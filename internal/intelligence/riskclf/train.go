package riskclf

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
)

// softmaxProblem is the weighted multinomial log-loss with an L2 penalty on
// the coefficients. Parameters are laid out as [W (K×V row-major), b (K)].
type softmaxProblem struct {
	x       []SparseVector
	y       []int
	weights []float64
	k, v    int
	c       float64
}

func (p *softmaxProblem) dim() int { return p.k*p.v + p.k }

// eval returns the objective at params and, when grad is non-nil, writes
// the gradient into it.
func (p *softmaxProblem) eval(params, grad []float64) float64 {
	w := params[:p.k*p.v]
	b := params[p.k*p.v:]

	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	z := make([]float64, p.k)
	var loss float64
	for i, row := range p.x {
		for k := 0; k < p.k; k++ {
			s := b[k]
			wk := w[k*p.v : (k+1)*p.v]
			for n, j := range row.Indices {
				s += wk[j] * row.Values[n]
			}
			z[k] = s
		}
		lse := floats.LogSumExp(z)
		si := p.weights[i]
		loss += si * (lse - z[p.y[i]])

		if grad == nil {
			continue
		}
		for k := 0; k < p.k; k++ {
			d := math.Exp(z[k] - lse)
			if k == p.y[i] {
				d--
			}
			d *= si
			gk := grad[k*p.v : (k+1)*p.v]
			for n, j := range row.Indices {
				gk[j] += d * row.Values[n]
			}
			grad[p.k*p.v+k] += d
		}
	}

	loss += floats.Dot(w, w) / (2 * p.c)
	if grad != nil {
		floats.AddScaled(grad[:p.k*p.v], 1/p.c, w)
	}
	return loss
}

// minimize runs L-BFGS from the origin. An optimiser error that still
// produced a location is logged and that location is used.
func (p *softmaxProblem) minimize(cfg *fitConfig) ([]float64, TrainingInfo) {
	init := make([]float64, p.dim())
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return p.eval(x, nil) },
		Grad: func(grad, x []float64) { p.eval(x, grad) },
	}
	settings := &optimize.Settings{
		MajorIterations:   cfg.maxIterations,
		GradientThreshold: cfg.gradientThreshold,
	}

	res, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if res == nil {
		cfg.logger.Error("risk model optimisation failed; using zero parameters", logging.Err(err))
		return init, TrainingInfo{Loss: p.eval(init, nil)}
	}
	if err != nil {
		cfg.logger.Warn("risk model optimisation stopped early",
			logging.Err(err),
			logging.Int("iterations", res.Stats.MajorIterations))
	}

	info := TrainingInfo{
		Iterations: res.Stats.MajorIterations,
		Loss:       res.F,
		Converged:  res.Status == optimize.GradientThreshold || res.Status == optimize.FunctionConvergence,
	}
	if !info.Converged {
		cfg.logger.Warn("risk model did not converge",
			logging.String("status", res.Status.String()),
			logging.Int("iterations", info.Iterations))
	}
	return res.X, info
}

//Personal.AI order the ending
