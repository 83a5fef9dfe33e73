package usecase

import "strings"

// GenerateCaption composes the caption text for a post.
// Body precedence: non-blank custom caption verbatim, else the work name
// wrapped in the standard body template, else empty. The tag line is the
// trimmed custom tags when non-blank, else the default tags.
func GenerateCaption(workName, customCaption, customTags, defaultTags string) string {
	body := ""
	if strings.TrimSpace(customCaption) != "" {
		body = strings.TrimSpace(customCaption)
	} else if strings.TrimSpace(workName) != "" {
		body = strings.TrimSpace(workName) + "の木彫りです！"
	}

	tagLine := defaultTags
	if strings.TrimSpace(customTags) != "" {
		tagLine = strings.TrimSpace(customTags)
	}

	if body == "" {
		return tagLine
	}
	return body + "\n\n" + tagLine
}
