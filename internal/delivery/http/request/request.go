package request

type LinkCacheRequest struct {
	URL string `json:"url"`
}

type FlushLinkCacheRequest struct {
	Force bool `json:"force"`
}

type CreateSiteRequest struct {
	Attributes map[string]string `json:"attributes"`
}

// SiteRequest carries the site-scoped operations. Location travels in the
// body because it is itself a URL.
type SiteRequest struct {
	Location  string `json:"location"`
	Page      string `json:"page,omitempty"`
	Link      string `json:"link,omitempty"`
	Problem   string `json:"problem,omitempty"`
	Temporary bool   `json:"temporary,omitempty"`
}

type SetPropertyRequest struct {
	Location string `json:"location"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}
