package notify

import (
	"context"
	"fmt"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// CommitOutcome turns the result of a commit into one operator notification
func CommitOutcome(ctx context.Context, n Notifier, result models.CommitResult, err error) {
	if n == nil {
		return
	}

	switch {
	case err != nil:
		n.Notify(ctx, fmt.Sprintf("Import failed: %v", err), SeverityError)
	case result.Accepted == 0:
		n.Notify(ctx, fmt.Sprintf("No new data: %d duplicate records skipped", result.Skipped), SeverityInfo)
	case result.Skipped > 0:
		n.Notify(ctx, fmt.Sprintf("%d records saved, %d duplicates skipped", result.Accepted, result.Skipped), SeveritySuccess)
	default:
		n.Notify(ctx, fmt.Sprintf("%d records saved", result.Accepted), SeveritySuccess)
	}
}
