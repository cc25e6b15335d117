package ports

import "context"

// HealthCheck pings one dependency. A nil error means reachable.
type HealthCheck func(ctx context.Context) error
