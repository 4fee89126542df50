package mention_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deportbot/internal/mention"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		users    []string
		channels []string
	}{
		{
			name:  "single user",
			text:  "deport <@U123ABC> please",
			users: []string{"U123ABC"},
		},
		{
			name:  "duplicate users collapse",
			text:  "hi <@U123> and <@U123> and <@U456|name>",
			users: []string{"U123", "U456"},
		},
		{
			name:     "users and channels mixed",
			text:     "move <@U111> out of <#C222> and <#C333|general>",
			users:    []string{"U111"},
			channels: []string{"C222", "C333"},
		},
		{
			name:  "display name suffix ignored",
			text:  "<@U777|some.user>",
			users: []string{"U777"},
		},
		{
			name: "empty text",
			text: "",
		},
		{
			name: "no mentions",
			text: "no mentions here",
		},
		{
			name: "unclosed bracket is not a mention",
			text: "<@U123 and <#C456",
		},
		{
			name: "lowercase ids do not match",
			text: "<@u123> <#c456>",
		},
		{
			name:  "mention mid-word",
			text:  "x<@UAB12>y",
			users: []string{"UAB12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := mention.Extract(tt.text)
			assert.ElementsMatch(t, tt.users, set.Users)
			assert.ElementsMatch(t, tt.channels, set.Channels)
		})
	}
}
