package netcash

import (
	"encoding/xml"
)

// ============================================
// SOAP Request Structures (internal marshaling)
// ============================================

// The NIWS endpoints are WCF services: they require WS-Addressing Action
// and To headers inside the envelope, not just the SOAPAction HTTP header.

type soapEnvelope struct {
	XMLName xml.Name   `xml:"s:Envelope"`
	SoapNS  string     `xml:"xmlns:s,attr"`
	AddrNS  string     `xml:"xmlns:a,attr"`
	Header  soapHeader `xml:"s:Header"`
	Body    soapBody   `xml:"s:Body"`
}

type soapHeader struct {
	Action addressingValue `xml:"a:Action"`
	To     addressingValue `xml:"a:To"`
}

type addressingValue struct {
	MustUnderstand string `xml:"s:mustUnderstand,attr"`
	Value          string `xml:",chardata"`
}

type soapBody struct {
	ValidateServiceKey  *validateServiceKeyCall  `xml:"ValidateServiceKey,omitempty"`
	UpdateSubscriptions *updateSubscriptionsCall `xml:"UpdateSubscriptions,omitempty"`
}

type validateServiceKeyCall struct {
	XMLName xml.Name                  `xml:"ValidateServiceKey"`
	NS      string                    `xml:"xmlns,attr"`
	Request validateServiceKeyRequest `xml:"request"`
}

type validateServiceKeyRequest struct {
	SoftwareVendorKey string            `xml:"SoftwareVendorKey"`
	MerchantAccount   string            `xml:"MerchantAccount"`
	ServiceInfoList   []serviceInfoItem `xml:"ServiceInfoList>ServiceInfo"`
}

type serviceInfoItem struct {
	ServiceID  int    `xml:"ServiceId"`
	ServiceKey string `xml:"ServiceKey"`
}

type updateSubscriptionsCall struct {
	XMLName xml.Name `xml:"UpdateSubscriptions"`
	NS      string   `xml:"xmlns,attr"`
	Active  bool     `xml:"Active"`
	M1      string   `xml:"M1"`  // Pay Now service key
	P2      string   `xml:"P2"`  // Unique reference of the original invoice
	M17     int      `xml:"M17"` // Subscription cycle
	M18     int      `xml:"M18"` // Subscription frequency
	M19     string   `xml:"M19"` // Subscription start date CCYYMMDD
	M20     string   `xml:"M20"` // Subscription recurring amount
}

func newEnvelope(action, to string) *soapEnvelope {
	return &soapEnvelope{
		SoapNS: "http://www.w3.org/2003/05/soap-envelope",
		AddrNS: "http://www.w3.org/2005/08/addressing",
		Header: soapHeader{
			Action: addressingValue{MustUnderstand: "1", Value: action},
			To:     addressingValue{MustUnderstand: "1", Value: to},
		},
	}
}

// ============================================
// SOAP Response Structures
// ============================================

type soapResponseEnvelope struct {
	XMLName xml.Name         `xml:"Envelope"`
	Body    soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	ValidateServiceKeyResponse  *validateServiceKeyResponse  `xml:"ValidateServiceKeyResponse"`
	UpdateSubscriptionsResponse *updateSubscriptionsResponse `xml:"UpdateSubscriptionsResponse"`
	Fault                       *soapFaultBody               `xml:"Fault"`
}

type validateServiceKeyResponse struct {
	Result validateServiceKeyResult `xml:"ValidateServiceKeyResult"`
}

type validateServiceKeyResult struct {
	AccountStatus string                `xml:"AccountStatus"`
	ServiceInfo   []serviceInfoResponse `xml:"ServiceInfo>ServiceInfoResponse"`
}

type serviceInfoResponse struct {
	ServiceID     int    `xml:"ServiceId"`
	ServiceKey    string `xml:"ServiceKey"`
	ServiceStatus string `xml:"ServiceStatus"`
}

type updateSubscriptionsResponse struct {
	Result string `xml:"UpdateSubscriptionsResult"`
}

type soapFaultBody struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
	Code        struct {
		Value string `xml:"Value"`
	} `xml:"Code"`
	Reason struct {
		Text string `xml:"Text"`
	} `xml:"Reason"`
}

// code returns the fault code for either SOAP 1.1 or 1.2 fault shapes.
func (f *soapFaultBody) code() string {
	if f.FaultCode != "" {
		return f.FaultCode
	}
	return f.Code.Value
}

func (f *soapFaultBody) reason() string {
	if f.FaultString != "" {
		return f.FaultString
	}
	return f.Reason.Text
}
