// File: internal/infra/blob/codec.go
package blob

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
)

// EncodeRegistry serializes subscriptions one per line, "recipient" or "recipient\tREGION",
// sorted by recipient. Encoding a decoded blob yields the same bytes.
func EncodeRegistry(subs []model.Subscription) []byte {
	subs = normalize(subs)
	var buf bytes.Buffer
	for _, s := range subs {
		buf.WriteString(string(s.Recipient))
		if s.Region != "" {
			buf.WriteByte('\t')
			buf.WriteString(s.Region)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeRegistry parses the line format written by EncodeRegistry. It also accepts the
// legacy one-chat-id-per-line file. Blank lines are skipped; a later duplicate wins.
func DecodeRegistry(data []byte) ([]model.Subscription, error) {
	var subs []model.Subscription
	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) > 2 {
			return nil, fmt.Errorf("%w: registry line %d: too many fields", domain.ErrStore, line)
		}
		s := model.Subscription{Recipient: model.RecipientID(fields[0])}
		if len(fields) == 2 {
			s.Region = strings.ToUpper(fields[1])
		}
		subs = append(subs, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan registry: %v", domain.ErrStore, err)
	}
	return normalize(subs), nil
}

// normalize dedupes by recipient (last entry wins) and sorts by recipient.
func normalize(subs []model.Subscription) []model.Subscription {
	byRecipient := make(map[model.RecipientID]model.Subscription, len(subs))
	for _, s := range subs {
		byRecipient[s.Recipient] = s
	}
	out := make([]model.Subscription, 0, len(byRecipient))
	for _, s := range byRecipient {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Recipient < out[j].Recipient })
	return out
}
