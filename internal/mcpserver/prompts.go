package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptArg is one templated argument of a prompt. The body refers to it
// as {{name}}.
type promptArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Default     string `yaml:"default"`
}

type promptSpec struct {
	Description string      `yaml:"description"`
	Arguments   []promptArg `yaml:"arguments"`
	Body        string      `yaml:"-"`
}

// registerPrompts registers one prompt per embedded markdown file, named
// after the file.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}

		spec := parsePrompt(content)
		prompt := &mcp.Prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: spec.Description,
		}
		for _, a := range spec.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Default == "",
			})
		}
		s.server.AddPrompt(prompt, makePromptHandler(spec))
	}
}

// parsePrompt splits YAML frontmatter from the prompt body. Content without
// valid frontmatter is all body.
func parsePrompt(content []byte) promptSpec {
	whole := promptSpec{Body: string(content)}
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return whole
	}
	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return whole
	}

	var spec promptSpec
	if err := yaml.Unmarshal(rest[:end], &spec); err != nil {
		return whole
	}
	spec.Body = strings.TrimPrefix(string(rest[end+5:]), "\n")
	return spec
}

// render substitutes argument values, falling back to each default.
func (p promptSpec) render(args map[string]string) string {
	pairs := make([]string, 0, 2*len(p.Arguments))
	for _, a := range p.Arguments {
		v := args[a.Name]
		if v == "" {
			v = a.Default
		}
		pairs = append(pairs, "{{"+a.Name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Body)
}

func makePromptHandler(spec promptSpec) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: spec.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: spec.render(args)},
				},
			},
		}, nil
	}
}
