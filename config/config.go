// Package config parses the three .conf tokens the core itself
// registers (spec.md §6): injectHandler, defDomain, defTarget. It is a
// small line grammar, not a general config format, grounded on
// original_source/Firmware/Core/ReadConfig.h's token-dispatch shape
// (one token name, one handler, the rest of the line as free-form
// arguments) and DefaultStore.c's typed key/value store for holding the
// parsed defDomain/defTarget results.
package config

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownToken is returned by ParseLine for any line whose first
// token is not one of injectHandler/defDomain/defTarget.
var ErrUnknownToken = errors.New("config: unknown token")

// ErrMalformedDirective is returned when a recognised token's line does
// not carry enough fields for that token's grammar.
var ErrMalformedDirective = errors.New("config: malformed directive")

// InjectHandler is "injectHandler NAME INTONAME [BEFORE_OTHER_NAME]":
// insert a named handler.Node into the chain registered as INTONAME,
// before BEFORE_OTHER_NAME if given, else at the tail.
type InjectHandler struct {
	Name       string
	IntoName   string
	BeforeName string // empty means "append at tail"
}

// DefDomain is "defDomain APPLICATION DOMAIN...": the ordered list of
// transport domains APPLICATION will try when no defTarget is given.
type DefDomain struct {
	Application string
	Domains     []string
}

// DefTarget is "defTarget APPLICATION DOMAIN TARGET": the concrete
// transport address APPLICATION uses for DOMAIN.
type DefTarget struct {
	Application string
	Domain      string
	Target      string
}

// Directive is one parsed config line: exactly one of InjectHandler,
// DefDomain, or DefTarget is non-nil.
type Directive struct {
	InjectHandler *InjectHandler
	DefDomain     *DefDomain
	DefTarget     *DefTarget
}

// ParseLine parses one config-file line into a Directive. Leading and
// trailing whitespace is ignored; blank lines and lines starting with
// "#" return (nil, nil), matching ReadConfig's comment/blank skipping.
func ParseLine(line string) (*Directive, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	fields := strings.Fields(line)
	token := fields[0]
	args := fields[1:]

	switch token {
	case "injectHandler":
		if len(args) < 2 {
			return nil, errors.Wrapf(ErrMalformedDirective, "injectHandler requires NAME INTONAME, got %q", line)
		}
		d := &InjectHandler{Name: args[0], IntoName: args[1]}
		if len(args) >= 3 {
			d.BeforeName = args[2]
		}
		return &Directive{InjectHandler: d}, nil

	case "defDomain":
		if len(args) < 2 {
			return nil, errors.Wrapf(ErrMalformedDirective, "defDomain requires APPLICATION DOMAIN..., got %q", line)
		}
		return &Directive{DefDomain: &DefDomain{Application: args[0], Domains: args[1:]}}, nil

	case "defTarget":
		if len(args) != 3 {
			return nil, errors.Wrapf(ErrMalformedDirective, "defTarget requires APPLICATION DOMAIN TARGET, got %q", line)
		}
		return &Directive{DefTarget: &DefTarget{Application: args[0], Domain: args[1], Target: args[2]}}, nil
	}

	return nil, errors.Wrapf(ErrUnknownToken, "%q", token)
}

// Parse reads every line from r, skipping blanks/comments, and returns
// every parsed Directive in file order. It stops at the first malformed
// or unrecognised line.
func Parse(r io.Reader) ([]Directive, error) {
	var directives []Directive
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		d, err := ParseLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		if d != nil {
			directives = append(directives, *d)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "config: scan")
	}
	return directives, nil
}
