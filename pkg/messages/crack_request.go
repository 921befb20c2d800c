package messages

import "encoding/xml"

// CrackHashRequest asks for the plaintext of Hash.
type CrackHashRequest struct {
	XMLName   xml.Name `xml:"CrackHashRequest"`
	RequestId string   `xml:"RequestId"`
	Hash      string   `xml:"Hash"`
}

type CrackHashResponse struct {
	XMLName     xml.Name `xml:"CrackHashResponse"`
	Id          string   `xml:"Id"`
	RequestId   string   `xml:"RequestId"`
	Status      string   `xml:"Status"`
	Plaintext   string   `xml:"Plaintext,omitempty"`
	ChainStart  string   `xml:"ChainStart,omitempty"`
	Position    int      `xml:"Position"`
	ErrorReason string   `xml:"ErrorReason,omitempty"`
}
