package health

import "context"

// DBPinger checks corpus store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BackendChecker checks generative backend availability.
type BackendChecker interface {
	HealthCheck(ctx context.Context) error
}
