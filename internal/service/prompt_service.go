package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultKeywordCount is how many keywords a target starts with.
const DefaultKeywordCount = 5

// MaxGeneratedPrompts caps the generated prompt list.
const MaxGeneratedPrompts = 5

const keywordSystemPrompt = "You are a keyword extraction expert. Extract relevant keywords from business content."

const promptSystemPrompt = "You are a search optimization expert. Generate natural search prompts for finding businesses."

// maxKeywordSourceText bounds how much page text is sent to the LLM.
const maxKeywordSourceText = 4000

var (
	lowercaseWord = regexp.MustCompile(`\b[a-z]{3,}\b`)
	listMarker    = regexp.MustCompile(`^\d+[.)]\s*`)
)

// stopWords are filtered out of heuristic keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "day": {}, "get": {}, "has": {}, "him": {},
	"his": {}, "how": {}, "its": {}, "may": {}, "new": {}, "now": {},
	"old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "boy": {},
	"did": {}, "let": {}, "put": {}, "say": {}, "she": {}, "too": {},
	"use": {},
}

// PromptService generates keywords from page content and category prompts
// from keywords. It uses the LLM when one is configured and degrades to
// deterministic heuristics otherwise.
type PromptService struct {
	client *LLMClient // nil when no LLM is configured
	logger *slog.Logger
}

// NewPromptService creates a prompt service. client may be nil.
func NewPromptService(client *LLMClient, logger *slog.Logger) *PromptService {
	return &PromptService{client: client, logger: logger}
}

// GenerateKeywords extracts count keywords from page text. LLM failures
// fall back to frequency-based extraction so target creation never fails
// on a flaky upstream.
func (s *PromptService) GenerateKeywords(ctx context.Context, text string, count int) []string {
	if count <= 0 {
		count = DefaultKeywordCount
	}

	if s.client != nil {
		keywords, err := s.generateKeywordsLLM(ctx, text, count)
		if err == nil {
			return keywords
		}
		s.logger.Warn("LLM keyword generation failed, using heuristic extraction", "error", err)
	}

	return extractKeywordsHeuristic(text, count)
}

func (s *PromptService) generateKeywordsLLM(ctx context.Context, text string, count int) ([]string, error) {
	if len(text) > maxKeywordSourceText {
		text = text[:maxKeywordSourceText] + "..."
	}

	prompt := fmt.Sprintf(`Analyze the following business website content and extract exactly %d most relevant keywords that would help potential customers find this business.

The keywords should be:
- Relevant to the business and its services
- Searchable terms customers might use
- Between 2-40 characters each
- Specific and actionable

Website content:
%s

Return only a comma-separated list of %d keywords, nothing else.`, count, text, count)

	result, err := s.client.Call(ctx, keywordSystemPrompt, prompt, LLMCallOptions{
		Temperature: 0.3,
		MaxTokens:   200,
		Timeout:     30 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	keywords := make([]string, 0, count)
	for _, part := range strings.Split(result.Content, ",") {
		keyword := strings.Trim(strings.TrimSpace(part), `"'`)
		if len(keyword) >= 2 && len(keyword) <= 40 {
			keywords = append(keywords, keyword)
		}
		if len(keywords) >= count {
			break
		}
	}

	for len(keywords) < count {
		keywords = append(keywords, fmt.Sprintf("Keyword%d", len(keywords)+1))
	}
	return keywords[:count], nil
}

// extractKeywordsHeuristic picks the most frequent non-stop words from the
// text, capitalized. Ties keep first-seen order.
func extractKeywordsHeuristic(text string, count int) []string {
	words := lowercaseWord.FindAllString(strings.ToLower(text), -1)

	type wordCount struct {
		word string
		n    int
	}
	freq := make(map[string]int)
	var order []string
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if freq[word] == 0 {
			order = append(order, word)
		}
		freq[word]++
	}

	counts := make([]wordCount, 0, len(order))
	for _, word := range order {
		counts = append(counts, wordCount{word: word, n: freq[word]})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].n > counts[j].n })

	keywords := make([]string, 0, count)
	for _, wc := range counts {
		if len(keywords) >= count {
			break
		}
		keywords = append(keywords, capitalize(wc.word))
	}

	for len(keywords) < count {
		keywords = append(keywords, fmt.Sprintf("Keyword%d", len(keywords)+1))
	}
	return keywords[:count]
}

// BuildPrompts generates category-style search prompts for visibility
// probing. Prompts never name the business itself; the point is to see
// whether the brand surfaces naturally in category queries.
func (s *PromptService) BuildPrompts(ctx context.Context, businessName string, keywords []string) []string {
	if s.client != nil {
		prompts, err := s.buildPromptsLLM(ctx, businessName, keywords)
		if err == nil {
			return prompts
		}
		s.logger.Warn("LLM prompt generation failed, using templates", "error", err)
	}

	return buildTemplatePrompts(keywords)
}

func (s *PromptService) buildPromptsLLM(ctx context.Context, businessName string, keywords []string) ([]string, error) {
	kws := keywords
	if len(kws) > 5 {
		kws = kws[:5]
	}
	keywordsStr := strings.Join(kws, ", ")

	prompt := fmt.Sprintf(`Generate exactly 5 search prompts that real users would type into AI assistants to find or compare services in the "%s" category.

CRITICAL REQUIREMENTS:
1. Do NOT include "%s" in the prompts - we want to see if it appears naturally in responses
2. Focus on CATEGORY/SERVICE TYPE queries (e.g., "best music streaming services", not a brand name)
3. Prompts should generate responses where MULTIPLE brands are mentioned
4. Under 200 characters each
5. Natural, real user language

Return exactly 5 category-based prompts, one per line, nothing else.`, keywordsStr, businessName)

	result, err := s.client.Call(ctx, promptSystemPrompt, prompt, LLMCallOptions{
		Temperature: 0.5,
		MaxTokens:   500,
		Timeout:     30 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	prompts := parsePromptLines(result.Content)

	for len(prompts) < MaxGeneratedPrompts {
		var fallback string
		if len(keywords) > 0 {
			fallback = fmt.Sprintf("What are the best %s services?", keywords[len(prompts)%len(keywords)])
		} else {
			fallback = "What are the best services in this category?"
		}
		if !containsString(prompts, fallback) {
			prompts = append(prompts, fallback)
		} else {
			break
		}
	}
	if len(prompts) > MaxGeneratedPrompts {
		prompts = prompts[:MaxGeneratedPrompts]
	}
	return prompts, nil
}

// parsePromptLines pulls individual prompts out of an LLM reply, stripping
// list markers, bullets and wrapping quotes.
func parsePromptLines(content string) []string {
	var prompts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if listMarker.MatchString(line) {
			line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		} else if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			line = strings.TrimSpace(line[2:])
		} else if strings.HasPrefix(line, "• ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "• "))
		}

		if len(line) < 10 || len(line) > 200 {
			continue
		}
		line = strings.Trim(line, `"'`)
		if !containsString(prompts, line) {
			prompts = append(prompts, line)
			if len(prompts) >= MaxGeneratedPrompts {
				break
			}
		}
	}
	return prompts
}

// buildTemplatePrompts is the no-LLM fallback: category queries built from
// the first few keywords.
func buildTemplatePrompts(keywords []string) []string {
	first := "services"
	if len(keywords) > 0 {
		first = keywords[0]
	}

	candidates := []string{
		fmt.Sprintf("Best %s", first),
		fmt.Sprintf("Top %s recommendations", first),
	}

	var keywordPrompts []string
	for _, keyword := range keywords {
		if len(keywordPrompts) >= 4 {
			break
		}
		keywordPrompts = append(keywordPrompts,
			fmt.Sprintf("What are the best %s services?", keyword),
			fmt.Sprintf("Compare top %s platforms", keyword),
		)
	}
	candidates = append(candidates, keywordPrompts...)

	var prompts []string
	for _, candidate := range candidates {
		if len(candidate) <= 200 && !containsString(prompts, candidate) {
			prompts = append(prompts, candidate)
			if len(prompts) >= MaxGeneratedPrompts {
				break
			}
		}
	}

	for len(prompts) < 2 {
		if len(keywords) > 0 {
			prompts = append(prompts, fmt.Sprintf("What are the best %s services?", keywords[0]))
		} else {
			prompts = append(prompts, "What are the best services in this category?")
		}
	}
	return prompts
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
