package client

import "context"

// View[T] is the stateless wrapper around a (query, language, namespace)
// tuple; it has no server-side handle of its own and exists only to
// build ResultSets (spec.md §4.4.1).
type View[T any] struct {
	client    *Client
	query     string
	language  string
	namespace string
}

// NewView builds a View over query/language/namespace. namespace, if
// empty, falls back to client's default namespace.
func NewView[T any](c *Client, query, language, namespace string) *View[T] {
	if namespace == "" {
		namespace = c.namespace
	}
	return &View[T]{client: c, query: query, language: language, namespace: namespace}
}

// Execute issues execute-query with the View's tuple plus an optional
// row-limit/timelimit restriction, returning a live ResultSet[T] built
// from the server's first batch.
func (v *View[T]) Execute(ctx context.Context, restriction *Restriction) (*ResultSet[T], error) {
	params := map[string]interface{}{
		"query":     v.query,
		"language":  v.language,
		"namespace": v.namespace,
	}
	applyRestriction(params, restriction)

	var result ExecuteQueryResult[T]
	if err := v.client.engine.Call(ctx, "execute-query", params, &result); err != nil {
		return nil, err
	}
	return newResultSet[T](v.client, &result, restriction), nil
}

// applyRestriction adds limit/timelimit keys to params when restriction
// sets them, omitting the keys entirely otherwise (spec.md §6's
// null-omission rule applies to params too, by convention with results).
func applyRestriction(params map[string]interface{}, restriction *Restriction) {
	if restriction == nil {
		return
	}
	if restriction.Limit != nil {
		params["limit"] = *restriction.Limit
	}
	if restriction.TimeLimit != nil {
		params["timelimit"] = restriction.TimeLimit.Seconds()
	}
}
