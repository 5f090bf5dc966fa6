package ota

type VehResWrapper struct {
	VehResRQ VehResRQ `xml:"ns1:OTA_VehResRQ"`
}

type VehResRQ struct {
	EchoToken    string       `xml:"EchoToken,attr"`
	TimeStamp    string       `xml:"TimeStamp,attr"`
	Target       string       `xml:"Target,attr"`
	Version      string       `xml:"Version,attr"`
	POS          POS          `xml:"ns1:POS"`
	VehResRQCore VehResRQCore `xml:"ns1:VehResRQCore"`
}

type VehResRQCore struct {
	VehRentalCore     VehRentalCore      `xml:"ns1:VehRentalCore"`
	Customer          Customer           `xml:"ns1:Customer"`
	VehPref           VehPref            `xml:"ns1:VehPref"`
	SpecialEquipPrefs *SpecialEquipPrefs `xml:"ns1:SpecialEquipPrefs,omitempty"`
}

type Customer struct {
	Primary Primary `xml:"ns1:Primary"`
}

type Primary struct {
	PersonName PersonName `xml:"ns1:PersonName"`
}

type PersonName struct {
	GivenName string `xml:"ns1:GivenName"`
	Surname   string `xml:"ns1:Surname"`
}

type VehPref struct {
	Code        string `xml:"Code,attr"`
	CodeContext string `xml:"CodeContext,attr"`
}

type SpecialEquipPrefs struct {
	SpecialEquipPref []SpecialEquipPref `xml:"ns1:SpecialEquipPref"`
}

type SpecialEquipPref struct {
	Code     string `xml:"Code,attr"`
	Quantity int    `xml:"Quantity,attr"`
}
