package ota

type VehAvailRateWrapper struct {
	VehAvailRateRQ VehAvailRateRQ `xml:"ns1:OTA_VehAvailRateRQ"`
}

type VehAvailRateRQ struct {
	MaxResponses   int            `xml:"MaxResponses,attr"`
	Version        string         `xml:"Version,attr"`
	Target         string         `xml:"Target,attr"`
	SequenceNmbr   int            `xml:"SequenceNmbr,attr"`
	PrimaryLangID  string         `xml:"PrimaryLangID,attr"`
	POS            POS            `xml:"ns1:POS"`
	VehAvailRQCore VehAvailRQCore `xml:"ns1:VehAvailRQCore"`
}

type VehAvailRQCore struct {
	Status        string        `xml:"Status,attr"`
	VehRentalCore VehRentalCore `xml:"ns1:VehRentalCore"`
	DriverType    *DriverType   `xml:"ns1:DriverType,omitempty"`
}

type DriverType struct {
	Age int `xml:"Age,attr"`
}
