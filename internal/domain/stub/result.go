package stub

// Result is what a handler produces: a status code, optional headers, and an
// optional body. Body is nil for no body, a string for opaque text, or a
// decoded JSON value for structured content. Results must pass validation
// before they are rendered onto the wire.
type Result struct {
	Status  int
	Headers map[string]string
	Body    any
}

// Builtins maps method then path to an unconditional result. Builtin handlers
// bypass matching entirely and never touch the registry.
type Builtins map[string]map[string]*Result

// Lookup returns the builtin result for a method and path, or nil.
func (b Builtins) Lookup(method, path string) *Result {
	byPath, ok := b[method]
	if !ok {
		return nil
	}
	return byPath[path]
}

// Register adds a builtin result, creating the method table as needed.
func (b Builtins) Register(method, path string, r *Result) {
	byPath, ok := b[method]
	if !ok {
		byPath = make(map[string]*Result)
		b[method] = byPath
	}
	byPath[path] = r
}
