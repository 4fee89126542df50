package deport

import (
	"encoding/json"
	"fmt"
)

// Slack callback and action identifiers for the deportation flow.
const (
	CallbackConfirm = "approve_deportation"
	ActionApprove   = "approve_deportation"
	ActionDecline   = "decline_deportation"
)

// confirmMetadata rides in the confirmation modal's private_metadata so the
// submission handler does not have to re-parse the rendered modal text.
type confirmMetadata struct {
	Channel string   `json:"channel"`
	Targets []string `json:"targets"`
}

// approvalPayload is attached to both buttons of the approval message. It is
// the authoritative record of the request: the displayed text is for humans
// and is never parsed back.
type approvalPayload struct {
	ID        string   `json:"id"`
	Requester string   `json:"requester"`
	Targets   []string `json:"targets"`
}

func encodePayload(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeConfirmMetadata(raw string) (*confirmMetadata, error) {
	var md confirmMetadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return nil, fmt.Errorf("failed to decode confirmation metadata: %w", err)
	}
	return &md, nil
}

func decodeApprovalPayload(raw string) (*approvalPayload, error) {
	var p approvalPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to decode approval payload: %w", err)
	}
	return &p, nil
}
