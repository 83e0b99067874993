package httpadapter

// redactedFields are the chunk keys stripped by the default redactor before
// serialization: provider credentials, system instructions and tool
// definitions never leave the server on a stream.
var redactedFields = map[string]struct{}{
	"apiKey":          {},
	"apiKeys":         {},
	"authorization":   {},
	"credentials":     {},
	"instructions":    {},
	"systemPrompt":    {},
	"tools":           {},
	"toolDefinitions": {},
}

// redactChunk strips sensitive substructure from a single chunk. Redaction is
// chunk-local: it never buffers or inspects neighboring chunks. Non-object
// values pass through untouched.
func redactChunk(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, drop := redactedFields[k]; drop {
				continue
			}
			out[k] = redactChunk(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = redactChunk(e)
		}
		return out
	default:
		return v
	}
}
