package handler

// Route type
type Route string

const (
	// RouteUpdate update repo
	RouteUpdate Route = "update"
	// RouteGetRepo get the whole repo
	RouteGetRepo Route = "getRepo"
	// RouteGetHistory list the persisted repo versions
	RouteGetHistory Route = "getHistory"
)
