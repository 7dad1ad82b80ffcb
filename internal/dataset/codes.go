package dataset

// Categorical code tables. These are external reference data supplied
// as static configuration, never inferred from the dataset itself: a
// future data revision that introduces a new code must fail visibly
// into the documented defaults rather than be silently misread.

// Applicant race codes used by the disclosure extract.
const (
	RaceBlack int64 = 4
	RaceWhite int64 = 9
)

// RaceLabels maps race codes to display labels.
var RaceLabels = map[int64]string{
	2:         "Asian",
	RaceBlack: "Black or African American",
	RaceWhite: "White",
}

// Applicant ethnicity codes.
const (
	EthnicityHispanic    int64 = 1
	EthnicityNotHispanic int64 = 5
)

// EthnicityLabels maps ethnicity codes to display labels.
var EthnicityLabels = map[int64]string{
	EthnicityHispanic:    "Hispanic or Latino",
	EthnicityNotHispanic: "Not Hispanic or Latino",
}

// Action-taken codes.
const (
	ActionOriginated int64 = 1
	ActionDenied     int64 = 3
)

// Property-interest codes for manufactured homes. Loans on ordinary
// site-built dwellings carry no code at all, which is why the recode
// falls through to DwellingDefault.
var PropertyInterestLabels = map[int64]string{
	1:    "Manufactured home and land",
	2:    "Manufactured home and not land",
	1111: "Exempt",
}

// DwellingDefault is the label for any property-interest code absent
// from the lookup, including missing codes.
const DwellingDefault = "Site-built"

// CountyFIPSWidth is the prefix width that turns an 11-digit census
// tract identifier into its county FIPS code.
const CountyFIPSWidth = 5

// StateFIPS maps postal state abbreviations to their two-digit FIPS
// prefixes, used to match the dataset's state column against county
// FIPS codes in the boundary file.
var StateFIPS = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06",
	"CO": "08", "CT": "09", "DE": "10", "DC": "11", "FL": "12",
	"GA": "13", "HI": "15", "ID": "16", "IL": "17", "IN": "18",
	"IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23",
	"MD": "24", "MA": "25", "MI": "26", "MN": "27", "MS": "28",
	"MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44",
	"SC": "45", "SD": "46", "TN": "47", "TX": "48", "UT": "49",
	"VT": "50", "VA": "51", "WA": "53", "WV": "54", "WI": "55",
	"WY": "56", "PR": "72",
}
