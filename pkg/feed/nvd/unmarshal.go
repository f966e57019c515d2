package nvd

// Shapes for the v1.1 JSON feed. Only the fields the pipeline consumes are declared;
// everything else in an item is ignored by the decoder.

type CveItem struct {
	Cve              CveDetail      `json:"cve"`
	Configurations   Configurations `json:"configurations"`
	Impact           Impact         `json:"impact"`
	PublishedDate    string         `json:"publishedDate"`
	LastModifiedDate string         `json:"lastModifiedDate"`
}

func (c CveItem) IsEmpty() bool {
	return c.Cve.Meta.ID == ""
}

type CveDetail struct {
	Meta        CveMeta     `json:"CVE_data_meta"`
	ProblemType ProblemType `json:"problemtype"`
	References  References  `json:"references"`
	Description Description `json:"description"`
}

type CveMeta struct {
	ID string `json:"ID"`
}

type ProblemType struct {
	Data []ProblemTypeData `json:"problemtype_data"`
}

type ProblemTypeData struct {
	Description []LangValue `json:"description"`
}

type References struct {
	Data []Reference `json:"reference_data"`
}

type Reference struct {
	URL string `json:"url"`
}

type Description struct {
	Data []LangValue `json:"description_data"`
}

type LangValue struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

type Impact struct {
	BaseMetricV2 *BaseMetricV2 `json:"baseMetricV2"`
	BaseMetricV3 *BaseMetricV3 `json:"baseMetricV3"`
}

type BaseMetricV2 struct {
	CvssV2              CvssData `json:"cvssV2"`
	ExploitabilityScore *float64 `json:"exploitabilityScore"`
	ImpactScore         *float64 `json:"impactScore"`
}

type BaseMetricV3 struct {
	CvssV3              CvssData `json:"cvssV3"`
	ExploitabilityScore *float64 `json:"exploitabilityScore"`
	ImpactScore         *float64 `json:"impactScore"`
}

type CvssData struct {
	VectorString string   `json:"vectorString"`
	BaseScore    *float64 `json:"baseScore"`
}

type Configurations struct {
	Nodes []Node `json:"nodes"`
}

type Node struct {
	Operator string     `json:"operator"`
	Children []Node     `json:"children"`
	CpeMatch []CpeMatch `json:"cpe_match"`
}

type CpeMatch struct {
	Cpe23Uri              string `json:"cpe23Uri"`
	Vulnerable            bool   `json:"vulnerable"`
	VersionStartIncluding string `json:"versionStartIncluding"`
	VersionStartExcluding string `json:"versionStartExcluding"`
	VersionEndIncluding   string `json:"versionEndIncluding"`
	VersionEndExcluding   string `json:"versionEndExcluding"`
}
