package coupang

// RawListing is one product record exactly as the API returned it. Field names
// drift between API versions, so it stays untyped until the deals package
// resolves it. Numbers are json.Number.
type RawListing map[string]any

// Deeplink is one converted tracking link.
type Deeplink struct {
	OriginalURL string `json:"originalUrl"`
	ShortenURL  string `json:"shortenUrl"`
	LandingURL  string `json:"landingUrl"`
}

// deeplinkRequest is the POST body for the deeplink endpoint. Field order is
// fixed by the struct so the signed bytes are stable.
type deeplinkRequest struct {
	CoupangURLs []string `json:"coupangUrls"`
	SubID       string   `json:"subId,omitempty"`
}

type deeplinkResponse struct {
	RCode    string     `json:"rCode"`
	RMessage string     `json:"rMessage"`
	Data     []Deeplink `json:"data"`
}
