package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/suPer8Hu/corecord/internal/ai"
	"github.com/suPer8Hu/corecord/internal/models"
)

const maxAbilities = 3

// Result is one generated analysis before it is attached to a record.
type Result struct {
	Content   string
	Comment   string
	Abilities []AbilityResult
}

type AbilityResult struct {
	Keyword models.Keyword
	Content string
}

// Generator derives an ability analysis from record content.
type Generator interface {
	Generate(ctx context.Context, content string) (*Result, error)
}

// AIGenerator asks the default ai.Provider for a JSON analysis.
type AIGenerator struct {
	registry *ai.Registry
}

func NewAIGenerator(registry *ai.Registry) *AIGenerator {
	return &AIGenerator{registry: registry}
}

type aiReply struct {
	Content   string `json:"content"`
	Comment   string `json:"comment"`
	Abilities []struct {
		Keyword string `json:"keyword"`
		Content string `json:"content"`
	} `json:"abilities"`
}

func analysisPrompt() string {
	names := make([]string, 0, len(models.Keywords))
	for _, k := range models.Keywords {
		names = append(names, string(k))
	}
	return "You are a career coach reading a user's experience record. " +
		"Reply with JSON only: " +
		`{"content": "<what the user did, 2-3 sentences>", "comment": "<one encouraging sentence>", ` +
		`"abilities": [{"keyword": "<keyword>", "content": "<how the record shows it>"}]}. ` +
		fmt.Sprintf("Pick 1 to %d keywords from: %s. Write in Korean.", maxAbilities, strings.Join(names, ", "))
}

func (g *AIGenerator) Generate(ctx context.Context, content string) (*Result, error) {
	provider, err := g.registry.Default(ctx)
	if err != nil {
		return nil, err
	}
	var reply aiReply
	if err := ai.ChatJSON(ctx, provider, []ai.Message{
		{Role: ai.RoleSystem, Content: analysisPrompt()},
		{Role: ai.RoleUser, Content: content},
	}, &reply); err != nil {
		return nil, fmt.Errorf("generate analysis: %w", err)
	}
	return normalize(&reply)
}

// normalize drops unknown and repeated keywords and rejects replies with nothing usable.
func normalize(reply *aiReply) (*Result, error) {
	res := &Result{
		Content: strings.TrimSpace(reply.Content),
		Comment: strings.TrimSpace(reply.Comment),
	}
	seen := make(map[models.Keyword]bool)
	for _, a := range reply.Abilities {
		k, ok := models.ParseKeyword(a.Keyword)
		text := strings.TrimSpace(a.Content)
		if !ok || seen[k] || text == "" {
			continue
		}
		seen[k] = true
		res.Abilities = append(res.Abilities, AbilityResult{Keyword: k, Content: text})
		if len(res.Abilities) == maxAbilities {
			break
		}
	}
	if res.Content == "" || len(res.Abilities) == 0 {
		return nil, ErrAnalysisFailed
	}
	return res, nil
}
