package responses

// Stats of an update
type Stats struct {
	NumberOfRecords int `json:"numberOfRecords"`
	NumberOfURIs    int `json:"numberOfURIs"`
	// seconds
	RepoRuntime float64 `json:"repoRuntime"`
	// seconds
	OwnRuntime float64 `json:"ownRuntime"`
}
