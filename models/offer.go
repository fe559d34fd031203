package models

// Supplier-reported availability status for a quote.
const (
	OfferAvailable = "Available"
	OfferOnRequest = "OnRequest"
)

// Offer is one supplier quote, normalized into the canonical shape.
// SupplierOfferRef is never empty: when the supplier omits a reference the
// normalizer synthesizes a stable one, because booking keys off this field.
type Offer struct {
	SourceID         string                 `json:"source_id" bson:"sourceId"`
	AgreementRef     string                 `json:"agreement_ref" bson:"agreementRef"`
	VehicleClass     string                 `json:"vehicle_class" bson:"vehicleClass"`
	MakeModel        string                 `json:"make_model,omitempty" bson:"makeModel,omitempty"`
	RatePlan         string                 `json:"rate_plan,omitempty" bson:"ratePlan,omitempty"`
	Currency         string                 `json:"currency" bson:"currency"`
	TotalPrice       float64                `json:"total_price" bson:"totalPrice"`
	SupplierOfferRef string                 `json:"supplier_offer_ref" bson:"supplierOfferRef"`
	Status           string                 `json:"status" bson:"status"`
	Extras           map[string]interface{} `json:"extras,omitempty" bson:"extras,omitempty"`
}
