package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSON = errors.New("ai: reply contains no json object")

// ChatJSON asks p for a reply and decodes the first {...} block of it into out.
// Models frequently wrap JSON in prose or code fences, so everything outside the
// outermost braces is ignored.
func ChatJSON(ctx context.Context, p Provider, messages []Message, out any) error {
	reply, err := p.Chat(ctx, messages)
	if err != nil {
		return err
	}
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), out); err != nil {
		return fmt.Errorf("ai: decode reply: %w", err)
	}
	return nil
}
