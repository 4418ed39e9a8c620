package ports

import (
	"context"
	"tripmate-route-service/internal/domain"
)

type EventPublisher interface {
	PublishRouteOptimized(ctx context.Context, evt domain.RouteOptimized) error
}
