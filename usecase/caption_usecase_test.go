package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCaption(t *testing.T) {
	tests := []struct {
		name          string
		workName      string
		customCaption string
		customTags    string
		defaultTags   string
		expected      string
	}{
		{
			name:        "work name with default tags",
			workName:    "ふくろう",
			defaultTags: "#tag1 #tag2",
			expected:    "ふくろうの木彫りです！\n\n#tag1 #tag2",
		},
		{
			name:        "empty work name falls back to tags only",
			workName:    "",
			defaultTags: "#tag1 #tag2",
			expected:    "#tag1 #tag2",
		},
		{
			name:        "custom tags win over default tags",
			workName:    "ねこ",
			customTags:  "#猫 #cat",
			defaultTags: "#tag1",
			expected:    "ねこの木彫りです！\n\n#猫 #cat",
		},
		{
			name:          "custom caption wins over work name",
			workName:      "ふくろう",
			customCaption: "今日の作品です",
			defaultTags:   "#tag1",
			expected:      "今日の作品です\n\n#tag1",
		},
		{
			name:          "blank custom caption is ignored",
			workName:      "ふくろう",
			customCaption: "   ",
			defaultTags:   "#tag1",
			expected:      "ふくろうの木彫りです！\n\n#tag1",
		},
		{
			name:        "work name is trimmed",
			workName:    "  ふくろう  ",
			defaultTags: "#tag1",
			expected:    "ふくろうの木彫りです！\n\n#tag1",
		},
		{
			name:        "blank custom tags fall back to defaults",
			workName:    "",
			customTags:  "  ",
			defaultTags: "#default",
			expected:    "#default",
		},
		{
			name:          "custom caption is trimmed",
			customCaption: " コメント ",
			defaultTags:   "#tag1",
			expected:      "コメント\n\n#tag1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCaption(tt.workName, tt.customCaption, tt.customTags, tt.defaultTags)
			assert.Equal(t, tt.expected, got)
		})
	}
}
