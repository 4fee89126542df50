package ledger

import "strings"

// Column names in the backing store. The sheet (and the postgres table
// mirroring it) keys rows by the deported user's ID and keeps the channels
// they were removed from as one comma-joined cell.
const (
	ColumnIntern   = "intern"
	ColumnChannels = "channels"
)

// RemovalRecord is one row of the ledger: a user and the private channels
// they were removed from, in removal order.
type RemovalRecord struct {
	User     string   `json:"user"`
	Channels []string `json:"channels"`
}

func joinChannels(channels []string) string {
	return strings.Join(channels, ",")
}

func splitChannels(joined string) []string {
	var channels []string
	for _, c := range strings.Split(joined, ",") {
		if c = strings.TrimSpace(c); c != "" {
			channels = append(channels, c)
		}
	}
	return channels
}
