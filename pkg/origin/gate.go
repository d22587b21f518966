// Package origin decides which browser origins may talk to the proxy and
// applies the matching CORS headers.
//
// Matching is byte-exact on the host part of the Origin value: no case
// folding and no IDN normalisation is done, so "ArtistGrid.cx" does not
// match "artistgrid.cx".
package origin

import (
	"strings"

	"github.com/rs/zerolog"
)

// Gate holds the two matching rules. It is immutable and safe to share.
type Gate struct {
	exact  string
	suffix string
	log    zerolog.Logger
}

type Option func(*Gate)

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// NewGate allows hosts equal to exact or ending with suffix. An empty rule matches nothing.
func NewGate(exact, suffix string, opts ...Option) *Gate {
	g := &Gate{
		exact:  exact,
		suffix: suffix,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsAllowed strips an http:// or https:// scheme and anything from the first
// ':' on, then compares the remaining host against the rules.
func (g *Gate) IsAllowed(origin string) bool {
	host := Host(origin)
	if host == "" {
		return false
	}
	if g.exact != "" && host == g.exact {
		return true
	}
	return g.suffix != "" && strings.HasSuffix(host, g.suffix)
}

// Host returns the part of an Origin value that IsAllowed compares.
func Host(origin string) string {
	host, ok := strings.CutPrefix(origin, "https://")
	if !ok {
		host = strings.TrimPrefix(origin, "http://")
	}
	host, _, _ = strings.Cut(host, ":")
	return host
}
