package models

// Adapter types a source can be configured with. "auto" leaves the choice to
// the registry's endpoint inspection.
const (
	AdapterAuto = "auto"
	AdapterREST = "rest"
	AdapterOTA  = "ota"
	AdapterRPC  = "rpc"
	AdapterMock = "mock"
)

// Source is one external supplier system's connection configuration.
type Source struct {
	ID                 string `json:"id" bson:"id"`
	Name               string `json:"name" bson:"name"`
	AdapterType        string `json:"adapter_type" bson:"adapterType"`
	Endpoint           string `json:"endpoint" bson:"endpoint"`
	UseNativeRPC       bool   `json:"use_native_rpc" bson:"useNativeRpc"`
	RequiresOTADialect bool   `json:"requires_ota_dialect" bson:"requiresOtaDialect"`
	TLSProfile         string `json:"tls_profile,omitempty" bson:"tlsProfile,omitempty"`
	Token              string `json:"-" bson:"token,omitempty"`
}
