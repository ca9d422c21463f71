package dixoncoles

import "fmt"

// Params is a fitted parameter vector: one value per design column plus rho
type Params struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
	Rho    float64   `json:"rho"`
}

// Get looks a parameter up by name, rho included
func (p Params) Get(name string) (float64, bool) {
	if name == ParamRho {
		return p.Rho, true
	}
	for i, n := range p.Names {
		if n == name {
			return p.Values[i], true
		}
	}
	return 0, false
}

// Map flattens the parameters into a name -> value map, rho included
func (p Params) Map() map[string]float64 {
	out := make(map[string]float64, len(p.Names)+1)
	for i, name := range p.Names {
		out[name] = p.Values[i]
	}
	out[ParamRho] = p.Rho
	return out
}

// Normalized returns a copy with offense parameters normalized
func (p Params) Normalized() Params {
	return Params{
		Names:  append([]string(nil), p.Names...),
		Values: NormalizeOffense(p.Names, p.Values),
		Rho:    p.Rho,
	}
}

func (p Params) clone() Params {
	return Params{
		Names:  append([]string(nil), p.Names...),
		Values: append([]float64(nil), p.Values...),
		Rho:    p.Rho,
	}
}

// vector lays parameters out for the optimizer, rho last
func (p Params) vector() []float64 {
	return append(append([]float64(nil), p.Values...), p.Rho)
}

func paramsFromVector(names []string, x []float64) Params {
	k := len(names)
	return Params{
		Names:  append([]string(nil), names...),
		Values: append([]float64(nil), x[:k]...),
		Rho:    x[k],
	}
}

// initialParams builds the starting point: zeros, overridden by any named initial values
func initialParams(names []string, initial map[string]float64) (Params, error) {
	p := Params{
		Names:  append([]string(nil), names...),
		Values: make([]float64, len(names)),
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	var unknown []string
	for name, value := range initial {
		if name == ParamRho {
			p.Rho = value
			continue
		}
		i, ok := index[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		p.Values[i] = value
	}

	if len(unknown) > 0 {
		return Params{}, inputErrorf("initial_params", "names not in the model vocabulary: %v", sortedKeys(toSet(unknown)))
	}

	return p, nil
}

// Coefficient is one parameter keyed by (term, category). Category is empty for numeric terms and rho.
type Coefficient struct {
	Term     string  `json:"term"`
	Category string  `json:"category,omitempty"`
	Value    float64 `json:"value"`
}

func (c Coefficient) String() string {
	if c.Category == "" {
		return fmt.Sprintf("%s=%.4f", c.Term, c.Value)
	}
	return fmt.Sprintf("%s[%s]=%.4f", c.Term, c.Category, c.Value)
}

// Coefficients splits every parameter name into its (term, category) key
func (p Params) Coefficients() []Coefficient {
	out := make([]Coefficient, 0, len(p.Names)+1)
	for i, name := range p.Names {
		c := Coefficient{Term: name, Value: p.Values[i]}
		if term, category, ok := SplitParamName(name); ok {
			c.Term, c.Category = term, category
		}
		out = append(out, c)
	}
	return append(out, Coefficient{Term: ParamRho, Value: p.Rho})
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
