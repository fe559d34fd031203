package adapter

import (
	"testing"

	"carhire/models"

	"github.com/stretchr/testify/require"
)

func TestResolveHTTPEndpointPicksREST(t *testing.T) {
	r := &DefaultRegistry{}
	got, err := r.Resolve(models.Source{ID: "s1", Endpoint: "https://api.supplier.example"})
	require.NoError(t, err)
	require.IsType(t, &RESTAdapter{}, got)
}

func TestResolveOTADialectOnHTTP(t *testing.T) {
	r := &DefaultRegistry{}

	got, err := r.Resolve(models.Source{ID: "s1", Endpoint: "https://ota.supplier.example", RequiresOTADialect: true})
	require.NoError(t, err)
	require.IsType(t, &OTAAdapter{}, got)

	got, err = r.Resolve(models.Source{ID: "s1", Endpoint: "http://ota.supplier.example", AdapterType: models.AdapterOTA})
	require.NoError(t, err)
	require.IsType(t, &OTAAdapter{}, got)
}

func TestResolveProtoSchemePicksNativeRPC(t *testing.T) {
	r := &DefaultRegistry{}
	got, err := r.Resolve(models.Source{ID: "s1", Endpoint: "proto://supplier.example:7443"})
	require.NoError(t, err)
	require.IsType(t, &RPCAdapter{}, got)
}

func TestResolveBareHostPortDefaultsToNativeRPC(t *testing.T) {
	r := &DefaultRegistry{}
	got, err := r.Resolve(models.Source{ID: "s1", Endpoint: "supplier.example:7443"})
	require.NoError(t, err)
	require.IsType(t, &RPCAdapter{}, got)
}

func TestResolveReusesNativeRPCConnection(t *testing.T) {
	r := &DefaultRegistry{}
	src := models.Source{ID: "s1", Endpoint: "proto://supplier.example:7443"}

	first, err := r.Resolve(src)
	require.NoError(t, err)
	second, err := r.Resolve(src)
	require.NoError(t, err)
	require.Same(t, first.(*RPCAdapter).client, second.(*RPCAdapter).client)

	// A changed endpoint drops the pooled connection and redials.
	src.Endpoint = "proto://failover.supplier.example:7443"
	third, err := r.Resolve(src)
	require.NoError(t, err)
	require.NotSame(t, first.(*RPCAdapter).client, third.(*RPCAdapter).client)

	require.NoError(t, r.Close())
}

func TestResolveNativeRPCFlagRejectsHTTPEndpoint(t *testing.T) {
	r := &DefaultRegistry{}
	_, err := r.Resolve(models.Source{ID: "s1", Endpoint: "https://api.supplier.example", UseNativeRPC: true})

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "s1", confErr.SourceID)
	require.Equal(t, models.AdapterRPC, confErr.Expected)
}

func TestResolveRESTTypeRejectsProtoEndpoint(t *testing.T) {
	r := &DefaultRegistry{}
	_, err := r.Resolve(models.Source{ID: "s1", Endpoint: "proto://supplier.example:7443", AdapterType: models.AdapterREST})

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestResolveRESTTypeRejectsBareHostPort(t *testing.T) {
	r := &DefaultRegistry{}
	_, err := r.Resolve(models.Source{ID: "s1", Endpoint: "supplier.example:7443", AdapterType: models.AdapterREST})

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestResolveEmptyEndpoint(t *testing.T) {
	r := &DefaultRegistry{}
	_, err := r.Resolve(models.Source{ID: "s1"})

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestResolveMockGating(t *testing.T) {
	src := models.Source{ID: "s1", AdapterType: models.AdapterMock}

	allowed := &DefaultRegistry{AllowMock: true}
	got, err := allowed.Resolve(src)
	require.NoError(t, err)
	require.IsType(t, &MockAdapter{}, got)

	denied := &DefaultRegistry{AllowMock: false}
	_, err = denied.Resolve(src)
	var mockErr *MockAdapterForbiddenError
	require.ErrorAs(t, err, &mockErr)
}
