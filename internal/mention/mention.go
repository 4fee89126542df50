// Package mention extracts Slack user and channel mentions from message text.
package mention

import "regexp"

// Slack renders mentions as <@U...> for users and <#C...> for channels,
// optionally followed by |display-name. Fragments that don't close the
// bracket simply don't match.
var mentionPattern = regexp.MustCompile(`<(@U[A-Z0-9]+|#C[A-Z0-9]+)(?:\|[^>]+)?>`)

// Set holds the users and channels referenced in a block of text.
// Both slices are deduplicated; order carries no meaning.
type Set struct {
	Users    []string
	Channels []string
}

// Extract returns every user and channel mentioned in text. Text with no
// well-formed mentions yields empty sets, never an error.
func Extract(text string) Set {
	var set Set
	seenUsers := make(map[string]bool)
	seenChannels := make(map[string]bool)

	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		id := match[1]
		switch id[0] {
		case '@':
			if !seenUsers[id[1:]] {
				seenUsers[id[1:]] = true
				set.Users = append(set.Users, id[1:])
			}
		case '#':
			if !seenChannels[id[1:]] {
				seenChannels[id[1:]] = true
				set.Channels = append(set.Channels, id[1:])
			}
		}
	}

	return set
}
