package mime

// Category is the top-level MIME type, including the trailing slash.
type Category string

const (
	Image Category = "image/"
	Text  Category = "text/"
)

// HTML is the subtype used for the main page and every not-found page.
const HTML = "html"

// categories maps subtypes to a non-default Category. Everything absent here is Text.
var categories = map[string]Category{
	"png": Image,
}

// classifiedPrefixes lists path prefixes whose subtype is taken from the file extension.
// Any other path is served as HTML.
var classifiedPrefixes = []string{"/test", "/images"}
