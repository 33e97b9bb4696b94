package agent

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

// GenerateArticle produces publishable text for one item using the creative
// model and the specialty's prompt template. Unlike scoring, a gateway
// failure here propagates to the caller: there is no safe default article.
func (a *Agent) GenerateArticle(ctx context.Context, item *model.ContentItem) (string, error) {
	prefs := a.learningSnapshot().Preferences
	prompt := a.hooks.BuildPrompt(item, a.cfg.Style, prefs)

	text, err := a.chat(ctx, "creative", []openrouter.Message{
		{Role: "system", Content: systemPrompt(a.cfg)},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", eris.Wrapf(err, "agent %s: generate article", a.cfg.ID)
	}
	if text == "" {
		return "", eris.Errorf("agent %s: gateway returned an empty article", a.cfg.ID)
	}

	zap.L().Info("article generated",
		zap.String("agent", a.cfg.ID),
		zap.String("item", item.ID),
		zap.String("category", item.Category))
	return FormatForPublication(text), nil
}

func systemPrompt(cfg model.AgentConfig) string {
	return fmt.Sprintf(
		"You are %s, a reporter covering %s for a Dubai city-information platform. Write for %s in a %s voice.",
		cfg.Name, cfg.Specialty, cfg.Style.Audience, cfg.Style.Voice)
}
