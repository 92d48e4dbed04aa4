package ports

import (
	"context"
)

// ContentSourcePort acquires raw questionnaire text before validation.
// Oversized or unreadable input yields empty content, never a core error kind.
type ContentSourcePort interface {
	ReadContent(ctx context.Context) (string, error)
}
