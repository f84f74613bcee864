package database

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/rkc/internal/ir"
)

// Decode extracts phases and parameters from a built CUE value.
// Names are normalised; structural checks beyond decoding are left to
// compiler.Validate.
func Decode(v cue.Value, mode LoadMode) (*ir.Database, []error) {
	db := &ir.Database{}
	var errs []error

	if err := v.Err(); err != nil {
		return db, []error{formatCUEError(err, ErrCodeBuildFailed)}
	}

	phasesVal := v.LookupPath(cue.ParsePath("phase"))
	if phasesVal.Exists() {
		iter, err := phasesVal.Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err, ErrCodePhase))
			if mode == LoadModeFailFast {
				return db, errs
			}
		} else {
			for iter.Next() {
				ph, err := decodePhase(iter.Label(), iter.Value())
				if err != nil {
					errs = append(errs, err)
					if mode == LoadModeFailFast {
						return db, errs
					}
					continue
				}
				db.Phases = append(db.Phases, ph)
			}
		}
	}

	paramsVal := v.LookupPath(cue.ParsePath("parameter"))
	if paramsVal.Exists() {
		iter, err := paramsVal.List()
		if err != nil {
			errs = append(errs, formatCUEError(err, ErrCodeParameter))
			if mode == LoadModeFailFast {
				return db, errs
			}
		} else {
			for i := 0; iter.Next(); i++ {
				p, err := decodeParameter(fmt.Sprintf("parameter[%d]", i), iter.Value())
				if err != nil {
					errs = append(errs, err)
					if mode == LoadModeFailFast {
						return db, errs
					}
					continue
				}
				db.Parameters = append(db.Parameters, p)
			}
		}
	}

	if len(db.Phases) == 0 && len(db.Parameters) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no phases or parameters found in database", Pos: v.Pos()})
	}

	return db, errs
}

func decodePhase(name string, v cue.Value) (ir.Phase, error) {
	field := "phase." + name
	subls := v.LookupPath(cue.ParsePath("sublattices"))
	if !subls.Exists() {
		return ir.Phase{}, fieldError(ErrCodePhase, v, "%s: sublattices are required", field)
	}
	arr, err := decodeStringMatrix(field+".sublattices", subls, ErrCodePhase)
	if err != nil {
		return ir.Phase{}, err
	}
	return ir.NormalizePhase(ir.Phase{Name: name, Sublattices: arr}), nil
}

func decodeParameter(field string, v cue.Value) (ir.Parameter, error) {
	var p ir.Parameter
	var err error

	if p.PhaseName, err = requiredString(field+".phase", v, "phase"); err != nil {
		return p, err
	}
	if p.ParameterType, err = requiredString(field+".type", v, "type"); err != nil {
		return p, err
	}

	constituents := v.LookupPath(cue.ParsePath("constituents"))
	if !constituents.Exists() {
		return p, fieldError(ErrCodeParameter, v, "%s.constituents: constituents are required", field)
	}
	if p.ConstituentArray, err = decodeStringMatrix(field+".constituents", constituents, ErrCodeParameter); err != nil {
		return p, err
	}

	// Order is optional and defaults to zero.
	if order := v.LookupPath(cue.ParsePath("order")); order.Exists() {
		n, err := order.Int64()
		if err != nil {
			return p, fieldError(ErrCodeParameter, order, "%s.order: must be an integer", field)
		}
		p.ParameterOrder = int(n)
	}

	value := v.LookupPath(cue.ParsePath("value"))
	if !value.Exists() {
		return p, fieldError(ErrCodeParameter, v, "%s.value: value is required", field)
	}
	if p.Value, err = decodeExpr(field+".value", value); err != nil {
		return p, err
	}

	if ref := v.LookupPath(cue.ParsePath("reference")); ref.Exists() {
		s, err := ref.String()
		if err != nil {
			return p, fieldError(ErrCodeParameter, ref, "%s.reference: must be a string", field)
		}
		p.Reference = s
	}

	return ir.NormalizeParameter(p), nil
}

// decodeExpr converts the structured CUE encoding of an expression.
func decodeExpr(field string, v cue.Value) (ir.Node, error) {
	if !v.IsConcrete() {
		return nil, fieldError(ErrCodeExpression, v, "%s: value must be concrete", field)
	}

	switch v.Kind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, fieldError(ErrCodeExpression, v, "%s: %v", field, err)
		}
		return ir.C(f), nil

	case cue.StringKind:
		s, _ := v.String()
		name := ir.Normalize(s)
		if name == "" {
			return nil, fieldError(ErrCodeExpression, v, "%s: empty symbol name", field)
		}
		return ir.S(name), nil

	case cue.StructKind:
		key, body, err := singleField(field, v)
		if err != nil {
			return nil, err
		}
		field += "." + key
		switch key {
		case "add":
			terms, err := decodeExprList(field, body)
			if err != nil {
				return nil, err
			}
			return ir.Sum{Terms: terms}, nil
		case "mul":
			factors, err := decodeExprList(field, body)
			if err != nil {
				return nil, err
			}
			return ir.Product{Factors: factors}, nil
		case "pow":
			return decodePower(field, body)
		case "ln":
			arg, err := decodeExpr(field, body)
			if err != nil {
				return nil, err
			}
			return ir.Log{Arg: arg}, nil
		case "piecewise":
			return decodePiecewise(field, body)
		default:
			return nil, fieldError(ErrCodeExpression, v, "%s: unknown expression %q", field, key)
		}

	default:
		return nil, fieldError(ErrCodeExpression, v, "%s: expected number, string or struct, got %v", field, v.Kind())
	}
}

func decodeExprList(field string, v cue.Value) ([]ir.Node, error) {
	iter, err := v.List()
	if err != nil {
		return nil, fieldError(ErrCodeExpression, v, "%s: must be a list", field)
	}
	var out []ir.Node
	for i := 0; iter.Next(); i++ {
		n, err := decodeExpr(fmt.Sprintf("%s[%d]", field, i), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fieldError(ErrCodeExpression, v, "%s: must not be empty", field)
	}
	return out, nil
}

func decodePower(field string, v cue.Value) (ir.Node, error) {
	baseVal := v.LookupPath(cue.ParsePath("base"))
	expVal := v.LookupPath(cue.ParsePath("exp"))
	if !baseVal.Exists() || !expVal.Exists() {
		return nil, fieldError(ErrCodeExpression, v, "%s: base and exp are required", field)
	}
	base, err := decodeExpr(field+".base", baseVal)
	if err != nil {
		return nil, err
	}
	exp, err := expVal.Int64()
	if err != nil {
		return nil, fieldError(ErrCodeExpression, expVal, "%s.exp: must be an integer", field)
	}
	return ir.Power{Base: base, Exp: int(exp)}, nil
}

// decodePiecewise reads [{lo?, hi?, when?, expr}] branches. lo and hi bound
// temperature as lo <= T < hi; when adds explicit {var, op, value}
// relations. A branch with no bound at all holds everywhere.
func decodePiecewise(field string, v cue.Value) (ir.Node, error) {
	iter, err := v.List()
	if err != nil {
		return nil, fieldError(ErrCodeExpression, v, "%s: must be a list of branches", field)
	}

	var branches []ir.Branch
	for i := 0; iter.Next(); i++ {
		bf := fmt.Sprintf("%s[%d]", field, i)
		bv := iter.Value()

		exprVal := bv.LookupPath(cue.ParsePath("expr"))
		if !exprVal.Exists() {
			return nil, fieldError(ErrCodeExpression, bv, "%s: expr is required", bf)
		}
		expr, err := decodeExpr(bf+".expr", exprVal)
		if err != nil {
			return nil, err
		}

		var conds []ir.Condition
		if lo := bv.LookupPath(cue.ParsePath("lo")); lo.Exists() {
			f, err := lo.Float64()
			if err != nil {
				return nil, fieldError(ErrCodeExpression, lo, "%s.lo: must be a number", bf)
			}
			conds = append(conds, ir.Relation{Var: ir.Temperature, Op: ir.OpGE, Value: f})
		}
		if hi := bv.LookupPath(cue.ParsePath("hi")); hi.Exists() {
			f, err := hi.Float64()
			if err != nil {
				return nil, fieldError(ErrCodeExpression, hi, "%s.hi: must be a number", bf)
			}
			conds = append(conds, ir.Relation{Var: ir.Temperature, Op: ir.OpLT, Value: f})
		}
		if when := bv.LookupPath(cue.ParsePath("when")); when.Exists() {
			rels, err := decodeRelations(bf+".when", when)
			if err != nil {
				return nil, err
			}
			conds = append(conds, rels...)
		}

		var cond ir.Condition
		switch len(conds) {
		case 0:
			cond = ir.Always{}
		case 1:
			cond = conds[0]
		default:
			cond = ir.And{Conds: conds}
		}
		branches = append(branches, ir.Branch{Expr: expr, Cond: cond})
	}

	if len(branches) == 0 {
		return nil, fieldError(ErrCodeExpression, v, "%s: at least one branch is required", field)
	}
	return ir.Piecewise{Branches: branches}, nil
}

func decodeRelations(field string, v cue.Value) ([]ir.Condition, error) {
	iter, err := v.List()
	if err != nil {
		return nil, fieldError(ErrCodeExpression, v, "%s: must be a list of relations", field)
	}
	var out []ir.Condition
	for i := 0; iter.Next(); i++ {
		rf := fmt.Sprintf("%s[%d]", field, i)
		rv := iter.Value()

		name, err := requiredString(rf+".var", rv, "var")
		if err != nil {
			return nil, err
		}
		op, err := requiredString(rf+".op", rv, "op")
		if err != nil {
			return nil, err
		}
		if !ir.ValidOps[ir.RelOp(op)] {
			return nil, fieldError(ErrCodeExpression, rv, "%s.op: invalid operator %q", rf, op)
		}
		valueVal := rv.LookupPath(cue.ParsePath("value"))
		f, err := valueVal.Float64()
		if err != nil {
			return nil, fieldError(ErrCodeExpression, rv, "%s.value: must be a number", rf)
		}
		out = append(out, ir.Relation{Var: ir.Normalize(name), Op: ir.RelOp(op), Value: f})
	}
	return out, nil
}

func decodeStringMatrix(field string, v cue.Value, code string) ([][]string, error) {
	outer, err := v.List()
	if err != nil {
		return nil, fieldError(code, v, "%s: must be a list of lists", field)
	}
	var out [][]string
	for i := 0; outer.Next(); i++ {
		inner, err := outer.Value().List()
		if err != nil {
			return nil, fieldError(code, outer.Value(), "%s[%d]: must be a list of strings", field, i)
		}
		var names []string
		for j := 0; inner.Next(); j++ {
			s, err := inner.Value().String()
			if err != nil {
				return nil, fieldError(code, inner.Value(), "%s[%d][%d]: must be a string", field, i, j)
			}
			names = append(names, s)
		}
		out = append(out, names)
	}
	return out, nil
}

func requiredString(field string, v cue.Value, name string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !sv.Exists() {
		return "", fieldError(ErrCodeParameter, v, "%s: %s is required", field, name)
	}
	s, err := sv.String()
	if err != nil {
		return "", fieldError(ErrCodeParameter, sv, "%s: must be a string", field)
	}
	return s, nil
}

// singleField splits a one-field struct into its label and value.
func singleField(field string, v cue.Value) (string, cue.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(err, ErrCodeExpression)
	}
	var labels []string
	var body cue.Value
	for iter.Next() {
		labels = append(labels, iter.Label())
		body = iter.Value()
	}
	if len(labels) != 1 {
		return "", cue.Value{}, fieldError(ErrCodeExpression, v, "%s: expected exactly one key, got %v", field, labels)
	}
	return labels[0], body, nil
}

func fieldError(code string, v cue.Value, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: v.Pos()}
}
