package provisioning

import (
	"strings"

	"github.com/spec-kit/okta-import/internal/domain"
)

// ParseEmailBatch splits free text into one address per line, trimming each
// line and dropping empty ones. Order is preserved.
func ParseEmailBatch(raw string) domain.EmailBatch {
	lines := strings.Split(raw, "\n")
	batch := make(domain.EmailBatch, 0, len(lines))
	for _, line := range lines {
		if email := strings.TrimSpace(line); email != "" {
			batch = append(batch, email)
		}
	}
	return batch
}
