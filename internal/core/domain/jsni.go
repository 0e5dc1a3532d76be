package domain

// JsniMethod is the native JavaScript body of one native method.
type JsniMethod struct {
	// Name is the qualified method name, e.g. pkg.Outer$Inner::method.
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Line   int      `json:"line"`
	// Start and End are byte offsets of the body, delimiters excluded.
	Start int `json:"start"`
	End   int `json:"end"`
	// Function is the body wrapped as a parseable JavaScript function.
	Function string `json:"function"`
}
