package adapter

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carhire/models"
)

// OTAAdapter speaks the attribute-heavy legacy travel-industry XML dialect.
// Requests are serialized from typed structs; responses are decoded into the
// generic node form (attributes under "@attributes", repeated elements as
// lists) and fed through the same normalizer as OTA-shaped JSON.
type OTAAdapter struct {
	SourceID string
	BaseURL  string
	Token    string
	Client   *http.Client
}

// NewOTAAdapter builds the REST/XML variant for one source. Used only when a
// source is flagged to require this dialect.
func NewOTAAdapter(src models.Source) *OTAAdapter {
	return &OTAAdapter{
		SourceID: src.ID,
		BaseURL:  strings.TrimSuffix(src.Endpoint, "/"),
		Token:    src.Token,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Request dialect structs. Only the nodes the suppliers on this transport
// actually read are emitted.

type otaPos struct {
	RequestorID struct {
		ID string `xml:"ID,attr"`
	} `xml:"Source>RequestorID"`
}

type otaVehAvailRateRQ struct {
	XMLName xml.Name `xml:"OTA_VehAvailRateRQ"`
	Version string   `xml:"Version,attr"`
	POS     otaPos   `xml:"POS"`
	Core    struct {
		VehRentalCore struct {
			PickUpDateTime string `xml:"PickUpDateTime,attr"`
			ReturnDateTime string `xml:"ReturnDateTime,attr"`
			PickUpLocation struct {
				LocationCode string `xml:"LocationCode,attr"`
			} `xml:"PickUpLocation"`
			ReturnLocation struct {
				LocationCode string `xml:"LocationCode,attr"`
			} `xml:"ReturnLocation"`
		} `xml:"VehRentalCore"`
		DriverType struct {
			Age int `xml:"Age,attr"`
		} `xml:"DriverType"`
		RateQualifier struct {
			CurrencyCode string `xml:"CurrencyCode,attr"`
		} `xml:"RateQualifier"`
	} `xml:"VehAvailRQCore"`
}

type otaVehResRQ struct {
	XMLName xml.Name `xml:"OTA_VehResRQ"`
	Version string   `xml:"Version,attr"`
	POS     otaPos   `xml:"POS"`
	Core    struct {
		Reference struct {
			ID string `xml:"ID,attr"`
		} `xml:"Reference"`
	} `xml:"VehResRQCore"`
}

type otaVehRefRQ struct {
	XMLName xml.Name `xml:"OTA_VehRetResRQ"`
	Version string   `xml:"Version,attr"`
	POS     otaPos   `xml:"POS"`
	ConfID  struct {
		ID string `xml:"ID,attr"`
	} `xml:"VehRetResRQCore>ConfID"`
}

type otaVehCancelRQ struct {
	XMLName xml.Name `xml:"OTA_VehCancelRQ"`
	Version string   `xml:"Version,attr"`
	POS     otaPos   `xml:"POS"`
	ConfID  struct {
		ID string `xml:"ID,attr"`
	} `xml:"VehCancelRQCore>ConfID"`
}

type otaVehModifyRQ struct {
	XMLName xml.Name `xml:"OTA_VehModifyRQ"`
	Version string   `xml:"Version,attr"`
	POS     otaPos   `xml:"POS"`
	ConfID  struct {
		ID string `xml:"ID,attr"`
	} `xml:"VehModifyRQCore>ConfID"`
}

type otaVehLocSearchRQ struct {
	XMLName xml.Name `xml:"OTA_VehLocSearchRQ"`
	Version string   `xml:"Version,attr"`
	POS     otaPos   `xml:"POS"`
}

func (a *OTAAdapter) post(ctx context.Context, body interface{}) (map[string]interface{}, error) {
	payload, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OTA request: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, &AdapterUnavailableError{SourceID: a.SourceID, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AdapterUnavailableError{SourceID: a.SourceID, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AdapterStatusError{
			SourceID:   a.SourceID,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(respBody),
		}
	}

	node, err := decodeXMLDocument(respBody)
	if err != nil {
		return nil, fmt.Errorf("source %s returned unparseable XML: %w", a.SourceID, err)
	}
	return node, nil
}

func (a *OTAAdapter) pos(agreementRef string) otaPos {
	var p otaPos
	p.RequestorID.ID = agreementRef
	return p
}

// Locations returns the UN/LOCODEs the source serves.
func (a *OTAAdapter) Locations(ctx context.Context) ([]string, error) {
	rq := otaVehLocSearchRQ{Version: "1.0"}
	result, err := a.post(ctx, rq)
	if err != nil {
		return nil, err
	}

	var locodes []string
	rs := asMap(result["OTA_VehLocSearchRS"])
	if rs == nil {
		return nil, nil
	}
	matched := asMap(rs["VehMatchedLocs"])
	for _, m := range AsList(matched["VehMatchedLoc"]) {
		loc := asMap(m)
		if loc == nil {
			continue
		}
		if detail := asMap(loc["LocationDetail"]); detail != nil {
			if code := attrString(detail, "Code"); code != "" {
				locodes = append(locodes, code)
			}
		}
	}
	return locodes, nil
}

// Availability runs one search under one agreement.
func (a *OTAAdapter) Availability(ctx context.Context, criteria models.AvailabilityCriteria, agreementRef string) ([]models.Offer, error) {
	rq := otaVehAvailRateRQ{Version: "1.0", POS: a.pos(agreementRef)}
	rq.Core.VehRentalCore.PickUpDateTime = criteria.PickupAt.Format(time.RFC3339)
	rq.Core.VehRentalCore.ReturnDateTime = criteria.DropoffAt.Format(time.RFC3339)
	rq.Core.VehRentalCore.PickUpLocation.LocationCode = criteria.PickupLocode
	rq.Core.VehRentalCore.ReturnLocation.LocationCode = criteria.DropoffLocode
	rq.Core.DriverType.Age = criteria.DriverAge
	rq.Core.RateQualifier.CurrencyCode = criteria.Currency

	result, err := a.post(ctx, rq)
	if err != nil {
		return nil, err
	}
	return NormalizeOTAAvailability(result, a.SourceID, agreementRef, criteria.Currency), nil
}

// BookingCreate creates a supplier-side booking.
func (a *OTAAdapter) BookingCreate(ctx context.Context, input models.BookingInput) (*models.BookingRecord, error) {
	rq := otaVehResRQ{Version: "1.0", POS: a.pos(input.AgreementRef)}
	rq.Core.Reference.ID = input.SupplierOfferRef

	result, err := a.post(ctx, rq)
	if err != nil {
		return nil, err
	}
	rec := NormalizeOTABooking(result, a.SourceID, input.AgreementRef, input.SupplierOfferRef)
	rec.Detail = input.Detail
	return rec, nil
}

// BookingModify changes an existing booking.
func (a *OTAAdapter) BookingModify(ctx context.Context, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error) {
	rq := otaVehModifyRQ{Version: "1.0", POS: a.pos(agreementRef)}
	rq.ConfID.ID = supplierBookingRef

	result, err := a.post(ctx, rq)
	if err != nil {
		return nil, err
	}
	rec := NormalizeOTABooking(result, a.SourceID, agreementRef, "")
	rec.SupplierBookingRef = supplierBookingRef
	rec.Detail = changes
	return rec, nil
}

// BookingCancel cancels an existing booking.
func (a *OTAAdapter) BookingCancel(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	rq := otaVehCancelRQ{Version: "1.0", POS: a.pos(agreementRef)}
	rq.ConfID.ID = supplierBookingRef

	result, err := a.post(ctx, rq)
	if err != nil {
		return nil, err
	}
	rec := NormalizeOTABooking(result, a.SourceID, agreementRef, "")
	rec.SupplierBookingRef = supplierBookingRef
	return rec, nil
}

// BookingCheck fetches the current supplier-side state of a booking.
func (a *OTAAdapter) BookingCheck(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	rq := otaVehRefRQ{Version: "1.0", POS: a.pos(agreementRef)}
	rq.ConfID.ID = supplierBookingRef

	result, err := a.post(ctx, rq)
	if err != nil {
		return nil, err
	}
	rec := NormalizeOTABooking(result, a.SourceID, agreementRef, "")
	rec.SupplierBookingRef = supplierBookingRef
	return rec, nil
}

// decodeXMLDocument parses an XML document into the generic node form the
// normalizer consumes: element attributes under "@attributes", child elements
// keyed by local name (repeats become lists), text content under "#text".
func decodeXMLDocument(data []byte) (map[string]interface{}, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			node, err := decodeXMLElement(dec, se)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{se.Name.Local: node}, nil
		}
	}
}

func decodeXMLElement(dec *xml.Decoder, start xml.StartElement) (map[string]interface{}, error) {
	node := make(map[string]interface{})
	if len(start.Attr) > 0 {
		attrs := make(map[string]interface{}, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		node["@attributes"] = attrs
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeXMLElement(dec, t)
			if err != nil {
				return nil, err
			}
			appendXMLChild(node, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if s := strings.TrimSpace(text.String()); s != "" {
				node["#text"] = s
			}
			return node, nil
		}
	}
}

func appendXMLChild(node map[string]interface{}, name string, child map[string]interface{}) {
	existing, ok := node[name]
	if !ok {
		node[name] = child
		return
	}
	if list, ok := existing.([]interface{}); ok {
		node[name] = append(list, child)
		return
	}
	node[name] = []interface{}{existing, child}
}
