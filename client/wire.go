package client

import (
	"encoding/json"
	"fmt"
)

// SignatureElement is one (attribute name, server type name) pair
// returned by the server for a query's output columns or a prepared
// query's input parameters (spec.md §3, §6).
type SignatureElement struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypeCategory is the local type category a SignatureElement's server
// type name maps to, per spec.md §6's mapping table. It is informational
// (decoding itself happens through T's own json.Unmarshal); callers that
// need to branch on declared parameter types (e.g. PreparedQuery.Set's
// "sql" type check) use it directly.
type TypeCategory int

const (
	TypeAny TypeCategory = iota
	TypeInteger
	TypeDouble
	TypeNumber
	TypeBoolean
	TypeString
	TypeDateTime
	TypeInterval
)

// typeCategoryOf maps a server type name to its local category,
// per spec.md §6.
func typeCategoryOf(serverType string) TypeCategory {
	switch serverType {
	case "integer":
		return TypeInteger
	case "double":
		return TypeDouble
	case "number":
		return TypeNumber
	case "boolean":
		return TypeBoolean
	case "stringcase", "stringnocase", "stringagnostic":
		return TypeString
	case "date", "time", "timestamp":
		return TypeDateTime
	case "interval":
		return TypeInterval
	default:
		return TypeAny
	}
}

// acceptsValue reports whether v's Go runtime type is acceptable for
// category under "sql" language type checking (spec.md §4.4.3). "fol"
// queries skip this check entirely; callers only invoke acceptsValue
// for sql-language prepared queries.
func acceptsValue(category TypeCategory, v interface{}) bool {
	switch category {
	case TypeInteger:
		switch v.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case TypeDouble, TypeNumber:
		switch v.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeDateTime, TypeInterval:
		// The wire form for these is a string (ISO-8601-ish); the server,
		// not this client, is authoritative on exact lexical validity.
		_, ok := v.(string)
		return ok
	default:
		return true
	}
}

// ExecuteQueryResult is the common payload shape of execute-query,
// create-resultset, and next-resultset-batch (spec.md §6): a server
// handle (absent once the whole result fits in one batch, or absent on
// a following batch that exhausts the cursor), a signature (present on
// the first batch only), an exhaustion flag, and the batch's rows.
type ExecuteQueryResult[T any] struct {
	Handle    *int64             `json:"handle,omitempty"`
	Signature []SignatureElement `json:"signature,omitempty"`
	Exhausted bool               `json:"exhausted"`
	Tuples    []T                `json:"tuples"`
}

// PreparedQueryRegistration is prepare-query's result.
type PreparedQueryRegistration struct {
	Handle              int64              `json:"handle"`
	InputSignature      []SignatureElement `json:"inputSignature"`
	OutputSignature     []SignatureElement `json:"outputSignature"`
	UsesNamedParameters bool               `json:"usesNamedParameters"`
}

// PolledQueryRegistration is create-polled-query's result.
type PolledQueryRegistration struct {
	Handle int64 `json:"handle"`
}

// RowsDelta is the success-notification payload for a polled query
// (spec.md §4.4.4, §6): the rows added and removed since the prior poll.
type RowsDelta[T any] struct {
	Added     []T    `json:"added"`
	Deleted   []T    `json:"deleted"`
	Timestamp string `json:"timestamp"`
}

// PolledQueryErrorNotification is the error-notification payload
// delivered under the same label as RowsDelta; the two are
// distinguished by shape (this one has no "added"/"deleted" keys).
type PolledQueryErrorNotification struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// BatchNotification is a batch subscription's coalesced notification
// payload (spec.md §4.4.7, §6).
type BatchNotification struct {
	UpdateNumber int64        `json:"update#"`
	Matches      []BatchMatch `json:"matches"`
}

// BatchMatch is one member's tuples within a BatchNotification. Tuples
// are kept raw here: BatchSubscription decodes each into the specific
// member's row type once it has looked the member up by label.
type BatchMatch struct {
	Label  string            `json:"label"`
	Tuples []json.RawMessage `json:"tuples"`
}

// RuntimeMeasure is the client.GetRuntimeMeasure() result: server
// process runtime/GC time/bytes allocated, wire-encoded as a bare
// 3-element array rather than an object (spec.md §6), hence the custom
// (Un)MarshalJSON.
type RuntimeMeasure struct {
	RunTime int64
	GCTime  int64
	Bytes   int64
}

func (r *RuntimeMeasure) UnmarshalJSON(data []byte) error {
	var arr []int64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("client: decode runtime measure: %w", err)
	}
	if len(arr) < 3 {
		return fmt.Errorf("client: runtime measure array too short: got %d elements, want 3", len(arr))
	}
	r.RunTime, r.GCTime, r.Bytes = arr[0], arr[1], arr[2]
	return nil
}

func (r RuntimeMeasure) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int64{r.RunTime, r.GCTime, r.Bytes})
}

// RelElement is one table/relation described within a RelGroup: its
// name, input/output signature names and types, usage text, any extra
// metadata, and a description. Wire form is a positional array
// (spec.md §6), not an object.
type RelElement struct {
	Name            string
	SignatureNames  []string
	SignatureTypes  []string
	Usage           string
	Extra           []interface{}
	Description     string
}

func (e *RelElement) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("client: decode rel element: %w", err)
	}
	if len(arr) < 6 {
		return fmt.Errorf("client: rel element array too short: got %d elements, want 6", len(arr))
	}
	if err := json.Unmarshal(arr[0], &e.Name); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[1], &e.SignatureNames); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[2], &e.SignatureTypes); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[3], &e.Usage); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[4], &e.Extra); err != nil {
		return err
	}
	return json.Unmarshal(arr[5], &e.Description)
}

// RelGroup is one table group returned by reldata2017: a name, a
// symbol, and the relations it contains. Wire form is a positional
// array `[name, symbol, [element...]]` (spec.md §6).
type RelGroup struct {
	Name     string
	Symbol   string
	Elements []RelElement
}

func (g *RelGroup) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("client: decode rel group: %w", err)
	}
	if len(arr) < 3 {
		return fmt.Errorf("client: rel group array too short: got %d elements, want 3", len(arr))
	}
	if err := json.Unmarshal(arr[0], &g.Name); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[1], &g.Symbol); err != nil {
		return err
	}
	return json.Unmarshal(arr[2], &g.Elements)
}
