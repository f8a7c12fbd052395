package api

import "context"

// GetFeed fetches the she feed of domain.
//
// suffix is appended to the feed path as-is (for example "/rumpel" for a
// single source). params are sent as query parameters, typically "since" and
// "until" unix timestamps. onSuccess receives the entries in server order and
// the rotated token, if the HAT sent one.
func (s FeedService) GetFeed(
	ctx context.Context,
	domain, token string,
	params Params,
	suffix string,
	onSuccess func([]FeedItem, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		url, err := s.apiURL(domain, "she/feed", suffix)
		return Request{
			Verb:    VerbGet,
			URL:     url,
			Query:   params,
			Headers: authHeaders(token),
		}, err
	}, DecodeList[FeedItem], onSuccess, onFailure)
}
