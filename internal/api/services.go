package api

// Service accessors group Client methods by HAT resource. Each service
// embeds *Client so it shares transport and delivery settings.

type AuthService struct{ *Client }

type DataService struct{ *Client }

type FeedService struct{ *Client }

type FilesService struct{ *Client }

type LogService struct{ *Client }

type ToolsService struct{ *Client }

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Data() DataService {
	return DataService{c}
}

func (c *Client) Feed() FeedService {
	return FeedService{c}
}

func (c *Client) Files() FilesService {
	return FilesService{c}
}

func (c *Client) Log() LogService {
	return LogService{c}
}

func (c *Client) Tools() ToolsService {
	return ToolsService{c}
}
