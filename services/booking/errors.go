package booking

import "fmt"

// AgreementInvalidError rejects a booking operation whose agreement is
// unknown, inactive, or not owned by the calling agent. The operation never
// reaches the supplier.
type AgreementInvalidError struct {
	AgreementRef string
	Reason       string
}

func (e *AgreementInvalidError) Error() string {
	return fmt.Sprintf("agreement %q cannot authorize this booking operation: %s", e.AgreementRef, e.Reason)
}

// NotFoundError reports that no booking record exists for the given ref.
type NotFoundError struct {
	SupplierBookingRef string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no booking found for supplier ref %q", e.SupplierBookingRef)
}
