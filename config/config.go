package config

import (
	"fmt"
	"path/filepath"
	"time"
)

type (
	NET struct {
		// Addr is the address the listener is bound to.
		Addr string
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout limits how long a single read may block. Zero disables the deadline,
		// so a silent client stalls the server until it disconnects.
		ReadTimeout Duration `test:"nullable"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod Duration
		// ProxyProtocol enables parsing PROXY protocol (v1 and v2) headers sent by a load
		// balancer in front of the server.
		ProxyProtocol bool `test:"nullable"`
	}

	Headers struct {
		// HeadPrealloc is the initial capacity of the buffer the request head is
		// accumulated in.
		HeadPrealloc int
		// MaxHeadSize limits the request line together with all the headers. Requests
		// exceeding it are treated as malformed.
		MaxHeadSize int
	}

	// Files holds locations of every file the server is able to respond with. Relative
	// paths are resolved against Root.
	Files struct {
		Root      string
		MainPage  string
		NotFound  string
		PoemDir   string
		ImagesDir string
	}

	Redirect struct {
		// CS50 is the target of the /cs50 route.
		CS50 string
	}
)

// Config holds settings used across various parts of the server.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET      NET
	Headers  Headers
	Files    Files
	Redirect Redirect
}

// Default returns default config. File locations mirror the layout the site is shipped with.
func Default() *Config {
	return &Config{
		NET: NET{
			Addr:                      ":8088",
			ReadBufferSize:            2 * 1024,
			ReadTimeout:               Duration(90 * time.Second),
			AcceptLoopInterruptPeriod: Duration(5 * time.Second),
		},
		Headers: Headers{
			HeadPrealloc: 1 * 1024,
			// browsers rarely send more than 8kb of headers, mostly due to cookies.
			MaxHeadSize: 16 * 1024,
		},
		Files: Files{
			Root:      "./src",
			MainPage:  "main-page.html",
			NotFound:  "404.html",
			PoemDir:   "poem",
			ImagesDir: "images",
		},
		Redirect: Redirect{
			CS50: "https://www.youtube.com/watch?v=LfaMVlDaQ24&ab_channel=freeCodeCamp.org",
		},
	}
}

// Resolve returns the path relative to Root, unless it's already absolute.
func (f Files) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(f.Root, path)
}

// Validate reports the first setting that makes the server impossible to run.
func (c *Config) Validate() error {
	switch {
	case len(c.NET.Addr) == 0:
		return fmt.Errorf("config: empty NET.Addr")
	case c.NET.ReadBufferSize <= 0:
		return fmt.Errorf("config: NET.ReadBufferSize must be positive, got %d", c.NET.ReadBufferSize)
	case c.NET.ReadTimeout < 0:
		return fmt.Errorf("config: NET.ReadTimeout must not be negative, got %s", c.NET.ReadTimeout)
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return fmt.Errorf("config: NET.AcceptLoopInterruptPeriod must be positive, got %s",
			c.NET.AcceptLoopInterruptPeriod)
	case c.Headers.MaxHeadSize <= 0:
		return fmt.Errorf("config: Headers.MaxHeadSize must be positive, got %d", c.Headers.MaxHeadSize)
	case c.Headers.HeadPrealloc > c.Headers.MaxHeadSize:
		return fmt.Errorf("config: Headers.HeadPrealloc (%d) exceeds Headers.MaxHeadSize (%d)",
			c.Headers.HeadPrealloc, c.Headers.MaxHeadSize)
	case len(c.Files.MainPage) == 0, len(c.Files.NotFound) == 0:
		return fmt.Errorf("config: Files.MainPage and Files.NotFound must be set")
	case len(c.Redirect.CS50) == 0:
		return fmt.Errorf("config: empty Redirect.CS50")
	}

	return nil
}
