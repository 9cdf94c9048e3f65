package sfapi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"fieldkit/internal/metadata"
)

const (
	soapEnvNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNS      = "http://www.w3.org/2001/XMLSchema-instance"
	metadataNS = "http://soap.sforce.com/2006/04/metadata"
)

// Metadata API operations.
const (
	opCreate = "createMetadata"
	opUpdate = "updateMetadata"
)

type requestEnvelope struct {
	XMLName xml.Name      `xml:"soapenv:Envelope"`
	SoapNS  string        `xml:"xmlns:soapenv,attr"`
	XsiNS   string        `xml:"xmlns:xsi,attr"`
	Header  requestHeader `xml:"soapenv:Header"`
	Body    requestBody   `xml:"soapenv:Body"`
}

type requestHeader struct {
	Session sessionHeader
}

type sessionHeader struct {
	XMLName   xml.Name `xml:"http://soap.sforce.com/2006/04/metadata SessionHeader"`
	SessionID string   `xml:"sessionId"`
}

type requestBody struct {
	Call metadataCall
}

// metadataCall is the operation element; XMLName carries the operation name.
type metadataCall struct {
	XMLName xml.Name
	Items   []typedComponent
}

// typedComponent encodes a component as <metadata xsi:type="Kind">.
type typedComponent struct {
	kind      metadata.Kind
	component metadata.Component
}

func (c typedComponent) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "metadata"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xsi:type"}, Value: string(c.kind)}},
	}
	return e.EncodeElement(c.component, start)
}

// encodeRequest renders a Metadata API call carrying items of one kind.
func encodeRequest(sessionID, operation string, kind metadata.Kind, items []metadata.Component) ([]byte, error) {
	typed := make([]typedComponent, len(items))
	for i, item := range items {
		typed[i] = typedComponent{kind: kind, component: item}
	}
	env := requestEnvelope{
		SoapNS: soapEnvNS,
		XsiNS:  xsiNS,
		Header: requestHeader{Session: sessionHeader{SessionID: sessionID}},
		Body: requestBody{Call: metadataCall{
			XMLName: xml.Name{Space: metadataNS, Local: operation},
			Items:   typed,
		}},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("encode %s request: %w", operation, err)
	}
	return buf.Bytes(), nil
}

type responseEnvelope struct {
	Body struct {
		Fault  *soapFault    `xml:"Fault"`
		Create *saveResponse `xml:"createMetadataResponse"`
		Update *saveResponse `xml:"updateMetadataResponse"`
	} `xml:"Body"`
}

// saveResponse holds one or many <result> elements. Both shapes decode into
// the same slice.
type saveResponse struct {
	Results []metadata.SaveResult `xml:"result"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// decodeResponse parses a SOAP response body. A fault is returned as an
// *APIError carrying httpStatus.
func decodeResponse(data []byte, operation string, httpStatus int) ([]metadata.SaveResult, error) {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}
	if f := env.Body.Fault; f != nil {
		code := f.Code
		if _, local, ok := strings.Cut(code, ":"); ok {
			code = local
		}
		return nil, &APIError{HTTPStatus: httpStatus, Code: code, Message: f.String}
	}

	var resp *saveResponse
	switch operation {
	case opCreate:
		resp = env.Body.Create
	case opUpdate:
		resp = env.Body.Update
	}
	if resp == nil {
		return nil, fmt.Errorf("decode %s response: missing %sResponse element", operation, operation)
	}
	return resp.Results, nil
}
