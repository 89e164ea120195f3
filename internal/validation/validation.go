// Package validation holds input validation for target fields. Handlers
// call these before anything touches storage or the network.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	MinBusinessNameLen = 2
	MaxBusinessNameLen = 80

	MinKeywords   = 1
	MaxKeywords   = 5
	MinKeywordLen = 2
	MaxKeywordLen = 40

	MinPrompts   = 1
	MaxPrompts   = 5
	MaxPromptLen = 200
)

// internalURLPattern matches prompts smuggling localhost or RFC 1918 URLs.
var internalURLPattern = regexp.MustCompile(
	`(?i)https?://(?:localhost|127\.0\.0\.1|10\.\d+\.\d+\.\d+|172\.(?:1[6-9]|2\d|3[01])\.\d+\.\d+|192\.168\.\d+\.\d+)`,
)

var (
	collapseWhitespace = regexp.MustCompile(`\s+`)
	keywordDisallowed  = regexp.MustCompile(`[^\w\s-]`)
)

// ValidateURL checks that a URL is a plausible public http/https URL and
// returns it in normalized form.
func ValidateURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("URL must be a non-empty string")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must have a valid domain")
	}

	normalized := parsed.Scheme + "://" + parsed.Host + parsed.Path
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		normalized += "#" + parsed.Fragment
	}
	return normalized, nil
}

// ValidateBusinessName trims and bounds-checks a business name.
func ValidateBusinessName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("business name cannot be empty or whitespace only")
	}
	if len(name) < MinBusinessNameLen || len(name) > MaxBusinessNameLen {
		return "", fmt.Errorf("business name must be between %d and %d characters", MinBusinessNameLen, MaxBusinessNameLen)
	}
	return name, nil
}

// ValidateKeywords trims each keyword and enforces count and length bounds.
func ValidateKeywords(keywords []string) ([]string, error) {
	if len(keywords) < MinKeywords {
		return nil, fmt.Errorf("at least %d keyword required", MinKeywords)
	}
	if len(keywords) > MaxKeywords {
		return nil, fmt.Errorf("maximum %d keywords allowed", MaxKeywords)
	}

	validated := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return nil, fmt.Errorf("keywords cannot be empty")
		}
		if len(keyword) < MinKeywordLen || len(keyword) > MaxKeywordLen {
			return nil, fmt.Errorf("each keyword must be between %d and %d characters", MinKeywordLen, MaxKeywordLen)
		}
		validated = append(validated, keyword)
	}
	return validated, nil
}

// ValidatePrompts trims each prompt, enforces count and length bounds and
// rejects prompts that embed localhost or private-network URLs.
func ValidatePrompts(prompts []string) ([]string, error) {
	if len(prompts) < MinPrompts {
		return nil, fmt.Errorf("at least %d prompt required", MinPrompts)
	}
	if len(prompts) > MaxPrompts {
		return nil, fmt.Errorf("maximum %d prompts allowed", MaxPrompts)
	}

	validated := make([]string, 0, len(prompts))
	for _, prompt := range prompts {
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			return nil, fmt.Errorf("prompts cannot be empty")
		}
		if len(prompt) > MaxPromptLen {
			return nil, fmt.Errorf("each prompt must be %d characters or less", MaxPromptLen)
		}
		if internalURLPattern.MatchString(prompt) {
			return nil, fmt.Errorf("prompts cannot contain internal/localhost URLs")
		}
		validated = append(validated, prompt)
	}
	return validated, nil
}

// SanitizeKeywords normalizes whitespace and strips characters outside
// word characters, spaces and hyphens. Keywords that end up empty are
// dropped rather than reported as errors.
func SanitizeKeywords(keywords []string) []string {
	sanitized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		keyword = collapseWhitespace.ReplaceAllString(keyword, " ")
		keyword = keywordDisallowed.ReplaceAllString(keyword, "")
		if keyword != "" {
			sanitized = append(sanitized, keyword)
		}
	}
	return sanitized
}
