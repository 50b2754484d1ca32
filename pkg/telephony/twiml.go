package telephony

import (
	"encoding/xml"
)

// TwiML document rendering. Twilio and TwiML-compatible providers accept the
// same call-control vocabulary, so the types live here rather than in the
// Twilio client.

type twimlResponse struct {
	XMLName xml.Name   `xml:"Response"`
	Dial    *twimlDial `xml:"Dial,omitempty"`
	Say     string     `xml:"Say,omitempty"`
}

type twimlDial struct {
	SIP twimlSIP `xml:"Sip"`
}

type twimlSIP struct {
	Username string `xml:"username,attr,omitempty"`
	Password string `xml:"password,attr,omitempty"`
	Address  string `xml:",chardata"`
}

// DialSIPScript renders a script that dials the given SIP address with the
// supplied SIP credentials embedded.
func DialSIPScript(sipEndpoint, username, password string) string {
	return render(twimlResponse{
		Dial: &twimlDial{SIP: twimlSIP{
			Username: username,
			Password: password,
			Address:  sipEndpoint,
		}},
	})
}

// SayScript renders a script that speaks the given announcement and hangs up.
// The inbound path uses it to report failures to the caller.
func SayScript(text string) string {
	return render(twimlResponse{Say: text})
}

func render(doc twimlResponse) string {
	out, err := xml.Marshal(doc)
	if err != nil {
		// Marshalling a fixed struct shape cannot fail at runtime.
		return "<Response></Response>"
	}
	return xml.Header + string(out)
}
