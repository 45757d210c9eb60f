package router

import (
	"path"
	"sort"

	"github.com/indigo-web/sonnet/config"
)

// Table maps exact resource paths to actions. Neither trailing slashes nor query
// strings are stripped, and matching is case-sensitive. The zero value matches nothing.
type Table struct {
	routes map[string]Action
}

// New copies the routes, so the table can't be modified afterward.
func New(routes map[string]Action) Table {
	copied := make(map[string]Action, len(routes))
	for p, action := range routes {
		copied[p] = action
	}

	return Table{routes: copied}
}

// Default builds the table of the site: the main page, two images, two poems and
// the /cs50 redirect.
func Default(cfg *config.Config) Table {
	files := cfg.Files
	routes := map[string]Action{
		"/":     ServeFile{Path: files.Resolve(files.MainPage)},
		"/cs50": Redirect{URL: cfg.Redirect.CS50},
	}

	for _, image := range []string{"/images/java-logo.png", "/images/javascript-logo.png"} {
		routes[image] = ServeFile{Path: files.Resolve(path.Join(files.ImagesDir, path.Base(image)))}
	}

	for _, poem := range []string{"/poem/sonnet-18.html", "/poem/the-new-colossus.html"} {
		routes[poem] = ServeFile{Path: files.Resolve(path.Join(files.PoemDir, path.Base(poem)))}
	}

	return New(routes)
}

// Dispatch looks the action up. The second return value reports whether the path
// is known at all.
func (t Table) Dispatch(resource string) (Action, bool) {
	action, found := t.routes[resource]
	return action, found
}

// Paths returns every known resource path in lexicographical order.
func (t Table) Paths() []string {
	paths := make([]string, 0, len(t.routes))
	for p := range t.routes {
		paths = append(paths, p)
	}

	sort.Strings(paths)
	return paths
}
