// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and reference only known metric names.
package validate

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/lsm5482-blip/my-coupang-bot/tools/dashgen/rules"
)

// Result collects validation findings.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Expr parses expr and checks its metric selectors against known.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parsing %q: %v", where, expr, err))
		return res
	}

	var names []string
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			names = append(names, vs.Name)
		}
		return nil
	})

	if len(names) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %q selects no metric", where, expr))
	}
	for _, name := range names {
		if !known[name] {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown metric %q", where, name))
		}
	}
	return res
}

// Dashboard validates every query target in dash.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("encoding dashboard: %v", err))
		return res
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	for _, q := range collectExprs(doc, "") {
		res.merge(Expr(q.where, q.expr, known))
	}
	return res
}

// Rules validates every expression of the given rule CRs. Recorded names
// become known for the rules that follow.
func Rules(known map[string]bool, crs ...rules.PrometheusRule) Result {
	var res Result
	for _, cr := range crs {
		exprs := cr.Exprs()
		keys := make([]string, 0, len(exprs))
		for k := range exprs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			res.merge(Expr(cr.Metadata.Name+"/"+k, exprs[k], known))
		}
	}
	return res
}

type query struct {
	where string
	expr  string
}

// collectExprs walks decoded dashboard JSON for "expr" fields, labeling each
// with the title of the panel that holds it.
func collectExprs(v any, title string) []query {
	var out []query
	switch t := v.(type) {
	case map[string]any:
		if s, ok := t["title"].(string); ok {
			title = s
		}
		if e, ok := t["expr"].(string); ok && e != "" {
			out = append(out, query{where: title, expr: e})
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			out = append(out, collectExprs(t[k], title)...)
		}
	case []any:
		for _, item := range t {
			out = append(out, collectExprs(item, title)...)
		}
	}
	return out
}
