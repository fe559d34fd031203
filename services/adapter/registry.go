package adapter

import (
	"strings"
	"sync"

	"carhire/config"
	"carhire/models"
	"carhire/rpc"
)

// Registry resolves one adapter variant per source configuration. Selection
// is a pure function of the source value; the only state a registry holds is
// its pool of native RPC connections, one per source, so that resolving the
// same source again reuses the connection instead of dialing a fresh one.
type Registry interface {
	Resolve(src models.Source) (SupplierAdapter, error)
}

// DefaultRegistry applies the transport disambiguation rules in order:
// explicit native-RPC flag, endpoint scheme, bare host:port (defaults to
// native RPC, the common case for this class of source), explicit mock type.
type DefaultRegistry struct {
	// AllowMock admits the mock adapter. Outside production it is always
	// admitted; in production only with an explicit override.
	AllowMock bool

	mu      sync.Mutex
	clients map[string]*pooledClient
}

// pooledClient pins the endpoint a connection was dialed against so a config
// change redials instead of silently reusing the old target.
type pooledClient struct {
	endpoint string
	client   *rpc.SourceClient
}

// NewRegistry builds a registry gated by the process environment.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		AllowMock: !config.IsProduction() || config.AppConfig.AllowMockAdapters,
	}
}

func (r *DefaultRegistry) Resolve(src models.Source) (SupplierAdapter, error) {
	adapterType := strings.ToLower(strings.TrimSpace(src.AdapterType))

	if adapterType == models.AdapterMock {
		if !r.AllowMock {
			return nil, &MockAdapterForbiddenError{SourceID: src.ID}
		}
		return NewMockAdapter(src), nil
	}

	if src.Endpoint == "" {
		return nil, &ConfigurationError{
			SourceID: src.ID,
			Endpoint: src.Endpoint,
			Expected: adapterOrAuto(adapterType),
			Reason:   "source has no endpoint configured",
		}
	}

	isHTTP := strings.HasPrefix(src.Endpoint, "http://") || strings.HasPrefix(src.Endpoint, "https://")
	isProto := strings.HasPrefix(src.Endpoint, "proto://")

	// An explicit native-RPC flag wins, but an http(s) endpoint cannot carry
	// the native transport: fail fast rather than try the wrong one.
	if src.UseNativeRPC || adapterType == models.AdapterRPC {
		if isHTTP {
			return nil, &ConfigurationError{
				SourceID: src.ID,
				Endpoint: src.Endpoint,
				Expected: models.AdapterRPC,
				Reason:   "native RPC requested but endpoint is http(s); point it at a proto:// or host:port address",
			}
		}
		return r.rpcAdapter(src)
	}

	if isProto {
		if adapterType == models.AdapterREST || adapterType == models.AdapterOTA || src.RequiresOTADialect {
			return nil, &ConfigurationError{
				SourceID: src.ID,
				Endpoint: src.Endpoint,
				Expected: adapterOrAuto(adapterType),
				Reason:   "REST adapter requested but endpoint carries the proto:// scheme",
			}
		}
		return r.rpcAdapter(src)
	}

	if isHTTP {
		if src.RequiresOTADialect || adapterType == models.AdapterOTA {
			return NewOTAAdapter(src), nil
		}
		return NewRESTAdapter(src), nil
	}

	// Bare host:port with no scheme is ambiguous; native RPC is the more
	// common case for this class of source. A source explicitly flagged REST
	// must carry a scheme.
	if adapterType == models.AdapterREST || adapterType == models.AdapterOTA {
		return nil, &ConfigurationError{
			SourceID: src.ID,
			Endpoint: src.Endpoint,
			Expected: adapterType,
			Reason:   "REST adapter requires an http(s):// endpoint, got a bare host:port",
		}
	}
	return r.rpcAdapter(src)
}

// rpcAdapter returns an adapter over the pooled connection for this source,
// dialing at most once per (source, endpoint). gRPC connections multiplex
// concurrent calls, so a single connection per source is enough for both the
// fan-out engine and the booking orchestrator.
func (r *DefaultRegistry) rpcAdapter(src models.Source) (*RPCAdapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.clients[src.ID]; ok {
		if p.endpoint == src.Endpoint {
			return NewRPCAdapter(src.ID, p.client), nil
		}
		p.client.Close()
		delete(r.clients, src.ID)
	}

	client, err := rpc.DialSource(src.Endpoint, src.TLSProfile, src.Token)
	if err != nil {
		return nil, &AdapterUnavailableError{SourceID: src.ID, Err: err}
	}
	if r.clients == nil {
		r.clients = make(map[string]*pooledClient)
	}
	r.clients[src.ID] = &pooledClient{endpoint: src.Endpoint, client: client}
	return NewRPCAdapter(src.ID, client), nil
}

// Close releases every pooled native RPC connection.
func (r *DefaultRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, p := range r.clients {
		if err := p.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.clients, id)
	}
	return firstErr
}

func adapterOrAuto(adapterType string) string {
	if adapterType == "" {
		return models.AdapterAuto
	}
	return adapterType
}
