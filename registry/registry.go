// Package registry provides etcd-backed discovery for lens adapter
// services and comparison worker pools.
//
// Lens adapters run as independent services; submitters need to know
// which lenses exist and where to reach them before they can capture the
// two sides of a comparison. Each service registers itself on startup,
// maintains presence through lease keepalives, and deregisters on
// graceful shutdown. Crashed services drop out automatically when their
// lease expires.
package registry

import (
	"context"
	"time"
)

// Service kinds stored in the registry.
const (
	KindLens   = "lens"
	KindWorker = "worker"
)

// LensInfo describes a registered service instance. Multiple instances of
// the same lens can run at once, each under its own InstanceID.
type LensInfo struct {
	// Kind is KindLens or KindWorker
	Kind string `json:"kind"`

	// Name is the lens or pool name (e.g., "text", "code", "compare-engine")
	Name string `json:"name"`

	// Version is the semantic version of the implementation
	Version string `json:"version"`

	// InstanceID uniquely identifies this instance (typically a UUID)
	InstanceID string `json:"instance_id"`

	// Endpoint is where the service can be reached, "host:port"
	Endpoint string `json:"endpoint"`

	// Metadata carries service attributes, e.g. "flavors": "ir,facts"
	Metadata map[string]string `json:"metadata"`

	// StartedAt is when this instance started
	StartedAt time.Time `json:"started_at"`
}

// Registry defines the registration and discovery interface. All
// implementations must be safe for concurrent use. Entries are tied to
// etcd leases with a TTL, so stale instances disappear on their own.
type Registry interface {
	// Register adds this instance to the registry and starts a background
	// keepalive that renews the lease every TTL/3. Re-registering the same
	// InstanceID updates the entry instead of duplicating it.
	Register(ctx context.Context, info LensInfo) error

	// Deregister revokes the instance's lease, removing it from discovery
	// immediately. Deregistering an unknown instance is a no-op.
	Deregister(ctx context.Context, info LensInfo) error

	// Discover returns all registered instances of one service, in
	// arbitrary order. The slice may be empty.
	Discover(ctx context.Context, kind, name string) ([]LensInfo, error)

	// DiscoverAll returns every registered instance of a kind, e.g. all
	// lenses, for status displays.
	DiscoverAll(ctx context.Context, kind string) ([]LensInfo, error)

	// Watch emits the current instance list for a service immediately and
	// again after every registration, deregistration, or lease expiry.
	// The channel closes when ctx is cancelled or the registry is closed.
	Watch(ctx context.Context, kind, name string) (<-chan []LensInfo, error)

	// Close stops all keepalives and watches and releases the connection.
	// Other methods error after Close.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the etcd cluster, e.g. ["host1:2379", "host2:2379"]
	Endpoints []string `json:"endpoints"`

	// Namespace is the key prefix for all entries; keys take the form
	// /{namespace}/{kind}/{name}/{instance-id}. Default: "bridge".
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. An instance that fails to
	// renew within this window is removed. Default: 30.
	TTL int `json:"ttl"`

	// TLS enables mutual TLS toward etcd. Nil disables TLS.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds certificate paths for mutual TLS toward etcd.
type TLSConfig struct {
	// Enabled determines whether TLS is active; when false the other
	// fields are ignored
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate (PEM)
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key (PEM)
	KeyFile string `json:"key_file"`

	// CAFile is the path to the CA used to verify the etcd server (PEM)
	CAFile string `json:"ca_file"`
}
