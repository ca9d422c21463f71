package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	dixoncoles "github.com/jhw/go-dixoncoles/pkg/dixon-coles"
)

// Config is the demo's run configuration, loaded from YAML and overridden by flags
type Config struct {
	DataFile  string               `yaml:"data_file"`
	League    string               `yaml:"league"` // Empty fits every league in the data
	Verbose   bool                 `yaml:"verbose"`
	Debug     bool                 `yaml:"debug"`
	SimParams dixoncoles.SimParams `yaml:"sim_params"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		DataFile:  "fixtures/events.json",
		SimParams: *dixoncoles.DefaultSimParams(),
	}
}

// loadConfig reads a YAML file over the defaults. Keys missing from the file keep their defaults.
func loadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config %s: %w", filename, err)
	}

	return cfg, nil
}

// cliFlags holds the raw flag values; only flags set on the command line override the config
type cliFlags struct {
	dataFile        string
	league          string
	verbose         bool
	debug           bool
	method          string
	maxiter         int
	timeDecayBase   float64
	timeDecayPower  float64
	weights         string
	goalBound       int
	simulationPaths int
	seed            uint64
}

func registerFlags(fs *flag.FlagSet, f *cliFlags, defaults Config) {
	sim := defaults.SimParams
	fs.StringVar(&f.dataFile, "data", defaults.DataFile, "Path to historical match data JSON file")
	fs.StringVar(&f.league, "league", defaults.League, "League code to fit (ENG1-ENG4); empty fits all leagues")
	fs.BoolVar(&f.verbose, "verbose", defaults.Verbose, "Print fixture odds and full JSON results")
	fs.BoolVar(&f.debug, "debug", defaults.Debug, "Enable debug logging during optimization")
	fs.StringVar(&f.method, "method", sim.Optimizer.Method, "Optimization method (BFGS, LBFGS, CG, GradientDescent, NelderMead)")
	fs.IntVar(&f.maxiter, "maxiter", sim.Optimizer.MaxIterations, "Maximum optimizer iterations")
	fs.Float64Var(&f.timeDecayBase, "time-decay-base", sim.TimeDecayBase, "Time decay base factor")
	fs.Float64Var(&f.timeDecayPower, "time-decay-power", sim.TimeDecayPower, "Time decay power exponent")
	fs.StringVar(&f.weights, "weights", sim.Weights, "Weights column or expression (\"1\" for unweighted)")
	fs.IntVar(&f.goalBound, "goal-bound", sim.GoalSimulationBound, "Maximum goals per side in scoreline tables")
	fs.IntVar(&f.simulationPaths, "simulation-paths", sim.SimulationPaths, "Monte Carlo simulation paths")
	fs.Uint64Var(&f.seed, "seed", sim.Seed, "Random seed (0 seeds from the clock)")
}

// applyFlags copies every explicitly set flag onto cfg
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "data":
			cfg.DataFile = f.dataFile
		case "league":
			cfg.League = f.league
		case "verbose":
			cfg.Verbose = f.verbose
		case "debug":
			cfg.Debug = f.debug
		case "method":
			cfg.SimParams.Optimizer.Method = f.method
		case "maxiter":
			cfg.SimParams.Optimizer.MaxIterations = f.maxiter
		case "time-decay-base":
			cfg.SimParams.TimeDecayBase = f.timeDecayBase
		case "time-decay-power":
			cfg.SimParams.TimeDecayPower = f.timeDecayPower
		case "weights":
			cfg.SimParams.Weights = f.weights
		case "goal-bound":
			cfg.SimParams.GoalSimulationBound = f.goalBound
		case "simulation-paths":
			cfg.SimParams.SimulationPaths = f.simulationPaths
		case "seed":
			cfg.SimParams.Seed = f.seed
		}
	})
}
