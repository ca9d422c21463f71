package dixoncoles

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// OptimizerOptions are handed to the Minimizer as-is
type OptimizerOptions struct {
	Method                     string             `json:"method" yaml:"method"`                                             // BFGS, LBFGS, CG, GradientDescent or NelderMead
	MaxIterations              int                `json:"max_iterations" yaml:"max_iterations"`                             // Major iteration cap, 0 for none
	MaxFuncEvaluations         int                `json:"max_func_evaluations" yaml:"max_func_evaluations"`                 // Objective evaluation cap, 0 for none
	GradientThreshold          float64            `json:"gradient_threshold" yaml:"gradient_threshold"`                     // Infinity-norm gradient tolerance
	FunctionAbsTolerance       float64            `json:"function_abs_tolerance" yaml:"function_abs_tolerance"`             // Objective improvement tolerance
	FunctionRelTolerance       float64            `json:"function_rel_tolerance" yaml:"function_rel_tolerance"`             // Relative objective improvement tolerance
	FunctionConvergeIterations int                `json:"function_converge_iterations" yaml:"function_converge_iterations"` // Iterations without improvement before stopping
	Controls                   map[string]float64 `json:"controls,omitempty" yaml:"controls,omitempty"`                     // Method-specific knobs
}

// DefaultOptimizerOptions returns the quasi-Newton defaults
func DefaultOptimizerOptions() OptimizerOptions {
	return OptimizerOptions{
		Method:                     "BFGS",
		MaxIterations:              1000,
		GradientThreshold:          1e-6,
		FunctionAbsTolerance:       1e-10,
		FunctionRelTolerance:       1e-12,
		FunctionConvergeIterations: 20,
	}
}

// MinimizeResult is what a Minimizer reports back
type MinimizeResult struct {
	X               []float64 `json:"x"`
	F               float64   `json:"f"`
	Converged       bool      `json:"converged"`
	Status          string    `json:"status"`
	Iterations      int       `json:"iterations"`
	FuncEvaluations int       `json:"func_evaluations"`
	Message         string    `json:"message,omitempty"`
}

// Minimizer finds a vector minimizing objective starting from initial. Non-convergence is
// reported through MinimizeResult.Converged; an error means no usable result at all.
type Minimizer interface {
	Minimize(initial []float64, objective func([]float64) float64, opts OptimizerOptions) (*MinimizeResult, error)
}

// GonumMinimizer minimizes with gonum/optimize, approximating gradients by central differences
type GonumMinimizer struct {
	Logger *logrus.Entry
	Debug  bool // Log progress every 50 major iterations
}

func (g GonumMinimizer) Minimize(initial []float64, objective func([]float64) float64, opts OptimizerOptions) (*MinimizeResult, error) {
	method, err := gonumMethod(opts)
	if err != nil {
		return nil, err
	}

	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, objective, x, &fd.Settings{Formula: fd.Central})
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: opts.GradientThreshold,
		MajorIterations:   opts.MaxIterations,
		FuncEvaluations:   opts.MaxFuncEvaluations,
	}
	if opts.FunctionConvergeIterations > 0 {
		settings.Converger = &optimize.FunctionConverge{
			Absolute:   opts.FunctionAbsTolerance,
			Relative:   opts.FunctionRelTolerance,
			Iterations: opts.FunctionConvergeIterations,
		}
	}
	if g.Debug {
		settings.Recorder = &progressRecorder{logger: orDefaultLogger(g.Logger), every: 50}
	}

	res, err := optimize.Minimize(problem, initial, settings, method)
	if res == nil {
		return nil, err
	}

	out := &MinimizeResult{
		X:               append([]float64(nil), res.X...),
		F:               res.F,
		Converged:       err == nil && convergedStatus(res.Status),
		Status:          res.Status.String(),
		Iterations:      res.MajorIterations,
		FuncEvaluations: res.FuncEvaluations,
	}
	if err != nil {
		out.Message = err.Error()
	}

	return out, nil
}

func gonumMethod(opts OptimizerOptions) (optimize.Method, error) {
	switch strings.ToLower(opts.Method) {
	case "", "bfgs":
		return &optimize.BFGS{}, nil
	case "lbfgs", "l-bfgs":
		m := &optimize.LBFGS{}
		if store, ok := opts.Controls["lbfgs_store"]; ok {
			m.Store = int(store)
		}
		return m, nil
	case "cg":
		return &optimize.CG{}, nil
	case "gradientdescent", "gradient-descent":
		return &optimize.GradientDescent{}, nil
	case "neldermead", "nelder-mead":
		m := &optimize.NelderMead{}
		if size, ok := opts.Controls["nelder_mead_simplex_size"]; ok {
			m.SimplexSize = size
		}
		return m, nil
	}
	return nil, inputErrorf("optimizer.method", "unknown optimization method %q", opts.Method)
}

func convergedStatus(status optimize.Status) bool {
	switch status {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// progressRecorder logs optimizer progress at debug level
type progressRecorder struct {
	logger *logrus.Entry
	every  int
}

func (r *progressRecorder) Init() error {
	return nil
}

func (r *progressRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 || stats.MajorIterations == 0 || stats.MajorIterations%r.every != 0 {
		return nil
	}

	r.logger.WithFields(logrus.Fields{
		"iteration":        stats.MajorIterations,
		"objective":        loc.F,
		"func_evaluations": stats.FuncEvaluations,
	}).Debug("optimizer progress")

	return nil
}
