package router

// Action is what a matched route does. It's either ServeFile or Redirect.
type Action interface {
	action()
}

// ServeFile responds with the file contents.
type ServeFile struct {
	Path string
}

func (ServeFile) action() {}

// Redirect responds with 302 Found pointing to the URL.
type Redirect struct {
	URL string
}

func (Redirect) action() {}
