package recommendations

// CloudProvider identifies the cloud a recommendation applies to.
type CloudProvider int

const (
	ProviderUnspecified CloudProvider = 0
	ProviderAWS         CloudProvider = 1
	ProviderAzure       CloudProvider = 2
)

func (p CloudProvider) String() string {
	switch p {
	case ProviderAWS:
		return "AWS"
	case ProviderAzure:
		return "AZURE"
	default:
		return "UNSPECIFIED"
	}
}

// FullName is the display name used in the detail sheet.
func (p CloudProvider) FullName() string {
	switch p {
	case ProviderAWS:
		return "Amazon Web Services"
	case ProviderAzure:
		return "Microsoft Azure"
	default:
		return "Unspecified"
	}
}

type RecommendationClass int

const (
	ClassUnspecified RecommendationClass = 0
	ClassCompute     RecommendationClass = 1
	ClassNetworking  RecommendationClass = 2
	ClassStorage     RecommendationClass = 3
	ClassIdentity    RecommendationClass = 4
	ClassDatabase    RecommendationClass = 5
)

var classNames = map[RecommendationClass]string{
	ClassCompute:    "Compute",
	ClassNetworking: "Networking",
	ClassStorage:    "Storage",
	ClassIdentity:   "Identity",
	ClassDatabase:   "Database",
}

func (c RecommendationClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "Unspecified"
}

type Framework struct {
	Name       string `json:"name"`
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
}

type Link struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

type Resource struct {
	Name string `json:"name"`
}

type Scope struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type ImpactAssessment struct {
	TotalViolations   int   `json:"totalViolations"`
	MostImpactedScope Scope `json:"mostImpactedScope"`
}

type Recommendation struct {
	RecommendationID          string              `json:"recommendationId"`
	TenantID                  string              `json:"tenantId"`
	Title                     string              `json:"title"`
	Slug                      string              `json:"slug"`
	Description               string              `json:"description"`
	Score                     int                 `json:"score"`
	Provider                  []CloudProvider     `json:"provider"`
	Frameworks                []Framework         `json:"frameworks"`
	Reasons                   []string            `json:"reasons"`
	FurtherReading            []Link              `json:"furtherReading"`
	TotalHistoricalViolations int                 `json:"totalHistoricalViolations"`
	AffectedResources         []Resource          `json:"affectedResources"`
	ImpactAssessment          ImpactAssessment    `json:"impactAssessment"`
	Class                     RecommendationClass `json:"class"`
}

type Cursor struct {
	Next *string `json:"next"`
}

type Pagination struct {
	Cursor     Cursor `json:"cursor"`
	TotalItems int    `json:"totalItems"`
}

// AvailableTags is the filter vocabulary for the current query scope.
type AvailableTags struct {
	Frameworks []string `json:"frameworks"`
	Providers  []string `json:"providers"`
	Classes    []string `json:"classes"`
	Reasons    []string `json:"reasons"`
}

// Len returns the number of tags across every category.
func (a AvailableTags) Len() int {
	return len(a.Frameworks) + len(a.Providers) + len(a.Classes) + len(a.Reasons)
}

// Page is one response of a list endpoint.
type Page struct {
	Data          []Recommendation `json:"data"`
	Pagination    Pagination       `json:"pagination"`
	AvailableTags AvailableTags    `json:"availableTags"`
}

// NextCursor returns the cursor of the following page, or "" and false on the last page.
func (p Page) NextCursor() (string, bool) {
	if p.Pagination.Cursor.Next == nil {
		return "", false
	}
	return *p.Pagination.Cursor.Next, true
}

// Filter selects one list endpoint and shapes its query.
type Filter struct {
	Archived bool
	// Limit overrides the page size. A zero Limit is only sent when LimitSet is true.
	Limit    int
	LimitSet bool
	Search   string
	Tags     []string
	Cursor   string
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
