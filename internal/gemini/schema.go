package gemini

import (
	"google.golang.org/genai"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// FunctionDeclarations converts tool declarations to Gemini function declarations.
func FunctionDeclarations(decls []domain.ToolDeclaration) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if len(d.Parameters) > 0 {
			props := make(map[string]*genai.Schema, len(d.Parameters))
			for _, p := range d.Parameters {
				props[p.Name] = &genai.Schema{
					Type:        schemaType(p.Type),
					Description: p.Description,
				}
			}
			fd.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   d.Required(),
			}
		}
		out = append(out, fd)
	}
	return out
}

// Tools wraps the declarations in a single Gemini tool.
func Tools(decls []domain.ToolDeclaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: FunctionDeclarations(decls)}}
}

func schemaType(t domain.ParamType) genai.Type {
	switch t {
	case domain.ParamTypeNumber:
		return genai.TypeNumber
	case domain.ParamTypeInteger:
		return genai.TypeInteger
	case domain.ParamTypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
