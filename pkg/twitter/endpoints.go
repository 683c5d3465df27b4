package twitter

// BaseURL is the default API host.
const BaseURL = "https://api.twitter.com"

// searchAllPath is the full-archive search endpoint. Access requires an
// academic research bearer token.
const searchAllPath = "/2/tweets/search/all"

// Default field selections requested with every search.
const (
	DefaultExpansions  = "author_id,geo.place_id,attachments.media_keys"
	DefaultTweetFields = "id,text,created_at,geo,public_metrics,possibly_sensitive"
	DefaultPlaceFields = "id,full_name,name,country,geo"
	DefaultUserFields  = "location"
	DefaultMediaFields = "duration_ms,height,media_key,preview_image_url,public_metrics,type,url,width,alt_text"
)
