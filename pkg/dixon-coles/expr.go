package dixoncoles

import (
	"fmt"
	"regexp"

	"github.com/google/cel-go/cel"
)

var identifierPattern = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// exprEvaluator evaluates numeric term and weight expressions row by row using CEL.
// Numeric columns are declared as doubles and categorical columns as strings, so
// expressions such as `time_weight * 2.0` or `league == "ENG1" ? 1.0 : 0.5` work.
type exprEvaluator struct {
	data DataSource
	env  *cel.Env
}

func newExprEvaluator(data DataSource) (*exprEvaluator, error) {
	var opts []cel.EnvOption
	for _, name := range data.ColumnNames() {
		// Columns that are not CEL identifiers can only be used as bare column references
		if !identifierPattern.MatchString(name) {
			continue
		}
		col, _ := data.Column(name)
		if col.Kind == CategoricalColumn {
			opts = append(opts, cel.Variable(name, cel.StringType))
		} else {
			opts = append(opts, cel.Variable(name, cel.DoubleType))
		}
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("building expression environment: %w", err)
	}

	return &exprEvaluator{data: data, env: env}, nil
}

// numeric evaluates expr for every row. Integer and boolean results are widened to float64.
func (e *exprEvaluator) numeric(expr string) ([]float64, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, &InputError{Field: expr, Message: "cannot compile expression", Err: issues.Err()}
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, &InputError{Field: expr, Message: "cannot build expression program", Err: err}
	}

	// One activation map reused across rows; Eval is synchronous
	names := e.data.ColumnNames()
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		if identifierPattern.MatchString(name) {
			col, _ := e.data.Column(name)
			columns = append(columns, col)
		}
	}
	activation := make(map[string]any, len(columns))

	values := make([]float64, e.data.Len())
	for row := range values {
		for _, col := range columns {
			if col.Kind == CategoricalColumn {
				activation[col.Name] = col.Labels[row]
			} else {
				activation[col.Name] = col.Numbers[row]
			}
		}

		out, _, err := prg.Eval(activation)
		if err != nil {
			return nil, &InputError{Field: expr, Message: fmt.Sprintf("evaluation failed at row %d", row), Err: err}
		}

		switch v := out.Value().(type) {
		case float64:
			values[row] = v
		case int64:
			values[row] = float64(v)
		case uint64:
			values[row] = float64(v)
		case bool:
			if v {
				values[row] = 1
			}
		default:
			return nil, inputErrorf(expr, "expression must evaluate to a number, got %T", v)
		}
	}

	return values, nil
}
