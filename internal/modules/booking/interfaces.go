package booking

import (
	"context"
	"time"

	"astrobooking/internal/domain"
	"astrobooking/internal/modules/payment"
)

type typeCatalog interface {
	ByID(id string) (domain.ConsultationType, bool)
}

type payer interface {
	Pay(ctx context.Context, req payment.Request) (payment.Result, error)
}

type checkoutResolver interface {
	Resolve(orderID string, o payment.Outcome) error
}

type inviteBuilder interface {
	Window(sel domain.Selection) (start, end time.Time, ok bool)
	InviteURL(sel domain.Selection) string
}

type stageObserver interface {
	ObserveStage(stage string)
}
