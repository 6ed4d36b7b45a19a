package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	serverURL string
	input     io.Reader
	output    io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sends the JSON log to w instead of stdout. The MCP
// command uses it to keep stdout free for the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithServerURL points the client commands at a running server. The
// default is the local port from the configuration.
func WithServerURL(u string) Option {
	return func(a *application) {
		a.serverURL = u
	}
}

// WithIO replaces stdin and stdout for the interactive commands.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *application) {
		a.input = in
		a.output = out
	}
}
