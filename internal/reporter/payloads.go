package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/pkg/edge"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

// chatText runs one gateway completion for profile-level synthesis, outside
// the engine's per-item scoring path.
func chatText(ctx context.Context, deps Deps, task, prompt string) (string, error) {
	resp, err := deps.AI.ChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:    deps.Cfg.OpenRouter.ModelForTask(task),
		Messages: []openrouter.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return openrouter.Text(resp), nil
}

// invokeJSON calls one proxy function and decodes its payload.
func invokeJSON(ctx context.Context, client edge.Client, src model.DataSource, out any) error {
	body := map[string]any{}
	if src.URL != "" {
		body["url"] = src.URL
	}
	if src.APIKey != "" {
		body["api_key"] = src.APIKey
	}
	for k, v := range src.Filters {
		body[k] = v
	}
	raw, err := client.Invoke(ctx, src.Function, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "reporter: decode %s payload", src.Function)
	}
	return nil
}

// parseTime accepts the timestamp formats the proxy functions emit. Zero
// time means unknown; callers treat it as just-published.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func publishedOrNow(s string) time.Time {
	if t := parseTime(s); !t.IsZero() {
		return t
	}
	return time.Now().UTC()
}

func newItemID() string {
	return uuid.New().String()
}

// rssPayload is the shape returned by fetch-rss.
type rssPayload struct {
	Items []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Content     string   `json:"content"`
		Link        string   `json:"link"`
		Author      string   `json:"author"`
		PubDate     string   `json:"pub_date"`
		Categories  []string `json:"categories"`
		ImageURLs   []string `json:"image_urls"`
	} `json:"items"`
}

// mapRSSItems converts a fetch-rss payload into content items, defaulting
// the category when the feed supplies none.
func mapRSSItems(src model.DataSource, payload rssPayload, defaultCategory string) []model.ContentItem {
	items := make([]model.ContentItem, 0, len(payload.Items))
	for _, raw := range payload.Items {
		content := raw.Content
		if content == "" {
			content = raw.Description
		}
		category := defaultCategory
		if len(raw.Categories) > 0 {
			category = strings.ToLower(raw.Categories[0])
		}
		items = append(items, model.ContentItem{
			ID:       newItemID(),
			Title:    raw.Title,
			Content:  content,
			Summary:  raw.Description,
			Category: category,
			Tags:     lowerAll(raw.Categories),
			Source:   src,
			Metadata: model.ContentMetadata{
				OriginalURL: raw.Link,
				Author:      raw.Author,
				ImageURLs:   raw.ImageURLs,
			},
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(raw.PubDate),
		})
	}
	return items
}

// newsAPIPayload is the shape returned by fetch-news-api.
type newsAPIPayload struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		Author      string `json:"author"`
		PublishedAt string `json:"published_at"`
		ImageURL    string `json:"image_url"`
		SourceName  string `json:"source_name"`
	} `json:"articles"`
}

func mapNewsAPIArticles(src model.DataSource, payload newsAPIPayload, category string) []model.ContentItem {
	items := make([]model.ContentItem, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		var images []string
		if raw.ImageURL != "" {
			images = []string{raw.ImageURL}
		}
		items = append(items, model.ContentItem{
			ID:       newItemID(),
			Title:    raw.Title,
			Content:  raw.Content,
			Summary:  raw.Description,
			Category: category,
			Source:   src,
			Metadata: model.ContentMetadata{
				OriginalURL: raw.URL,
				Author:      raw.Author,
				ImageURLs:   images,
				Custom:      map[string]any{"origin": raw.SourceName},
			},
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(raw.PublishedAt),
		})
	}
	return items
}

// socialPayload is the shape returned by the social update functions.
type socialPayload struct {
	Posts []struct {
		Text       string `json:"text"`
		Author     string `json:"author"`
		URL        string `json:"url"`
		PostedAt   string `json:"posted_at"`
		Engagement int    `json:"engagement"`
		Platform   string `json:"platform"`
	} `json:"posts"`
}

func mapSocialPosts(src model.DataSource, payload socialPayload, category string) []model.ContentItem {
	items := make([]model.ContentItem, 0, len(payload.Posts))
	for _, raw := range payload.Posts {
		title := raw.Text
		if len(title) > 80 {
			title = title[:80]
		}
		items = append(items, model.ContentItem{
			ID:       newItemID(),
			Title:    title,
			Content:  raw.Text,
			Category: category,
			Source:   src,
			Metadata: model.ContentMetadata{
				OriginalURL: raw.URL,
				Author:      raw.Author,
				Custom: map[string]any{
					"platform":   raw.Platform,
					"engagement": raw.Engagement,
				},
			},
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(raw.PostedAt),
		})
	}
	return items
}

func lowerAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// keywordRelevance scores keyword hits at `per` apiece, capped at 1.
func keywordRelevance(text string, keywords []string, per float64) float64 {
	lower := strings.ToLower(text)
	score := 0.0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += per
		}
	}
	if score > 1 {
		return 1
	}
	return score
}

// articlePrompt assembles the shared prompt skeleton: the item, the style
// guidelines, the learned length preference, and specialty instructions.
func articlePrompt(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences, instructions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an article based on the following source material.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if item.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", item.Summary)
	}
	fmt.Fprintf(&b, "Category: %s\n\nContent:\n%s\n\n", item.Category, item.Content)

	fmt.Fprintf(&b, "Guidelines:\n")
	if len(style.Tones) > 0 {
		fmt.Fprintf(&b, "- Tone: %s\n", strings.Join(style.Tones, ", "))
	}
	if target := prefs.PreferredLength.Optimal; target > 0 {
		fmt.Fprintf(&b, "- Target length: about %d words\n", target)
	}
	if len(prefs.AvoidKeywords) > 0 {
		fmt.Fprintf(&b, "- Avoid emphasis on: %s\n", strings.Join(prefs.AvoidKeywords, ", "))
	}
	for _, fragment := range style.PromptFragments {
		fmt.Fprintf(&b, "- %s\n", fragment)
	}
	for _, instruction := range instructions {
		fmt.Fprintf(&b, "- %s\n", instruction)
	}
	return b.String()
}
