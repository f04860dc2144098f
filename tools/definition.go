package tools

import (
	"github.com/KamdynS/scholarstream/llm"
)

// FromRegistry builds llm.Tool definitions from a Registry.
func FromRegistry(reg Registry) []llm.Tool {
	if reg == nil {
		return nil
	}
	names := reg.List()
	out := make([]llm.Tool, 0, len(names))
	for _, n := range names {
		if t, ok := reg.Get(n); ok {
			out = append(out, llm.Tool{Type: "function", Function: llm.ToolFunction{Name: t.Name(), Description: t.Description(), Parameters: t.Schema()}})
		}
	}
	return out
}
