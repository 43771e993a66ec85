package tebra

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

const (
	soapEnvNS    = "http://schemas.xmlsoap.org/soap/envelope/"
	schemaNS     = "http://www.kareo.com/api/schemas/"
	actionPrefix = "http://www.kareo.com/api/schemas/KareoServices/"

	maxResponseBytes = 32 << 20
)

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soapenv:Envelope"`
	SoapEnv string      `xml:"xmlns:soapenv,attr"`
	Sch     string      `xml:"xmlns:sch,attr"`
	Body    requestBody `xml:"soapenv:Body"`
}

type requestBody struct {
	Content any
}

type responseEnvelope struct {
	Body struct {
		Fault   *soapFault `xml:"Fault"`
		Content []byte     `xml:",innerxml"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// responseStatus is embedded in every *Result element.
type responseStatus struct {
	Error    *errorResponse    `xml:"ErrorResponse"`
	Security *securityResponse `xml:"SecurityResponse"`
}

type errorResponse struct {
	IsError      bool   `xml:"IsError"`
	ErrorMessage string `xml:"ErrorMessage"`
}

type securityResponse struct {
	Authorized     bool   `xml:"Authorized"`
	SecurityResult string `xml:"SecurityResult"`
}

// fault converts the service-level error flags into a *Fault, or nil.
func (s responseStatus) fault(op string) error {
	if s.Error != nil && s.Error.IsError {
		return &Fault{Kind: FaultAPI, Op: op, Message: s.Error.ErrorMessage}
	}
	if s.Security != nil && !s.Security.Authorized {
		return &Fault{Kind: FaultAuth, Op: op, Message: s.Security.SecurityResult}
	}
	return nil
}

// call posts one SOAP operation and decodes the response element into out.
// Every failure below the service's own error flags is a transport fault.
func (c *Client) call(ctx context.Context, op string, body, out any) error {
	env := requestEnvelope{SoapEnv: soapEnvNS, Sch: schemaNS, Body: requestBody{Content: body}}
	payload, err := xml.Marshal(env)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+actionPrefix+op+`"`)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Fault{Kind: FaultTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Fault{Kind: FaultTransport, Op: op, Message: "read response", Err: err}
	}

	var renv responseEnvelope
	if err := xml.Unmarshal(data, &renv); err != nil {
		return &Fault{Kind: FaultTransport, Op: op, Message: fmt.Sprintf("decode response (HTTP %d)", resp.StatusCode), Err: err}
	}
	if f := renv.Body.Fault; f != nil {
		return &Fault{Kind: FaultTransport, Op: op, Message: "soap fault: " + f.String}
	}
	if resp.StatusCode != http.StatusOK {
		return &Fault{Kind: FaultTransport, Op: op, Message: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode)}
	}
	if err := xml.Unmarshal(renv.Body.Content, out); err != nil {
		return &Fault{Kind: FaultTransport, Op: op, Message: "decode result", Err: err}
	}
	return nil
}
