package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/handler"
)

func TestParseLineInjectHandlerWithBefore(t *testing.T) {
	d, err := ParseLine("injectHandler debug ifTable cache")
	require.NoError(t, err)
	require.NotNil(t, d.InjectHandler)
	assert.Equal(t, "debug", d.InjectHandler.Name)
	assert.Equal(t, "ifTable", d.InjectHandler.IntoName)
	assert.Equal(t, "cache", d.InjectHandler.BeforeName)
}

func TestParseLineInjectHandlerWithoutBefore(t *testing.T) {
	d, err := ParseLine("injectHandler debug ifTable")
	require.NoError(t, err)
	assert.Equal(t, "", d.InjectHandler.BeforeName)
}

func TestParseLineInjectHandlerTooFewArgs(t *testing.T) {
	_, err := ParseLine("injectHandler debug")
	assert.ErrorIs(t, err, ErrMalformedDirective)
}

func TestParseLineDefDomain(t *testing.T) {
	d, err := ParseLine("defDomain snmpd udp tcp unix")
	require.NoError(t, err)
	require.NotNil(t, d.DefDomain)
	assert.Equal(t, "snmpd", d.DefDomain.Application)
	assert.Equal(t, []string{"udp", "tcp", "unix"}, d.DefDomain.Domains)
}

func TestParseLineDefTarget(t *testing.T) {
	d, err := ParseLine("defTarget snmpd udp 127.0.0.1:161")
	require.NoError(t, err)
	require.NotNil(t, d.DefTarget)
	assert.Equal(t, "snmpd", d.DefTarget.Application)
	assert.Equal(t, "udp", d.DefTarget.Domain)
	assert.Equal(t, "127.0.0.1:161", d.DefTarget.Target)
}

func TestParseLineDefTargetWrongArgCount(t *testing.T) {
	_, err := ParseLine("defTarget snmpd udp")
	assert.ErrorIs(t, err, ErrMalformedDirective)
}

func TestParseLineBlankAndCommentReturnNil(t *testing.T) {
	d, err := ParseLine("   ")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseLine("# a comment")
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestParseLineUnknownTokenErrors(t *testing.T) {
	_, err := ParseLine("bogusToken a b")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestParseReadsMultipleLinesInOrder(t *testing.T) {
	src := strings.NewReader("# header\ndefDomain snmpd udp\n\ndefTarget snmpd udp 10.0.0.1:161\n")
	directives, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, directives, 2)
	assert.NotNil(t, directives[0].DefDomain)
	assert.NotNil(t, directives[1].DefTarget)
}

func TestParseStopsAtFirstMalformedLine(t *testing.T) {
	src := strings.NewReader("defDomain snmpd udp\ndefTarget bad\n")
	_, err := Parse(src)
	assert.Error(t, err)
}

func TestApplyDefDomainRecordsJoinedDomains(t *testing.T) {
	store := NewStore()
	ApplyDefDomain(store, DefDomain{Application: "snmpd", Domains: []string{"udp", "tcp"}})
	v, ok := store.String("snmpd.domains")
	require.True(t, ok)
	assert.Equal(t, "udp tcp", v)
}

func TestApplyDefTargetRecordsTarget(t *testing.T) {
	store := NewStore()
	ApplyDefTarget(store, DefTarget{Application: "snmpd", Domain: "udp", Target: "127.0.0.1:161"})
	v, ok := store.String("snmpd.udp")
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:161", v)
}

func TestApplyInjectHandlerAppendsToChainTail(t *testing.T) {
	RegisterHandlerFactory("test-debug-node", func() *handler.Node {
		return handler.NewNode("test-debug-node", func(*handler.Node, *handler.RegistrationInfo, *handler.RequestInfo, []*handler.Request) error {
			return nil
		})
	})

	base := handler.NewNode("base", func(*handler.Node, *handler.RegistrationInfo, *handler.RequestInfo, []*handler.Request) error {
		return nil
	})
	chain := handler.NewChain(base)

	err := ApplyInjectHandler(InjectHandler{Name: "test-debug-node", IntoName: "whatever"}, chain)
	require.NoError(t, err)

	assert.Equal(t, "base", chain.Head().Name)
	assert.Equal(t, "test-debug-node", chain.Head().Next().Name)
}

func TestApplyInjectHandlerResolvesStockDebugAndTableFactories(t *testing.T) {
	for _, name := range []string{"debug", "table"} {
		base := handler.NewNode("base", func(*handler.Node, *handler.RegistrationInfo, *handler.RequestInfo, []*handler.Request) error {
			return nil
		})
		chain := handler.NewChain(base)

		err := ApplyInjectHandler(InjectHandler{Name: name, IntoName: "whatever"}, chain)
		require.NoError(t, err)
		assert.Equal(t, name, chain.Head().Next().Name)
	}
}

func TestApplyInjectHandlerUnknownFactoryErrors(t *testing.T) {
	chain := handler.NewChain(handler.NewNode("base", func(*handler.Node, *handler.RegistrationInfo, *handler.RequestInfo, []*handler.Request) error {
		return nil
	}))
	err := ApplyInjectHandler(InjectHandler{Name: "does-not-exist", IntoName: "whatever"}, chain)
	assert.ErrorIs(t, err, ErrUnknownHandlerFactory)
}

func TestApplyDispatchesOnDirectiveKind(t *testing.T) {
	store := NewStore()
	err := Apply(store, Directive{DefDomain: &DefDomain{Application: "app", Domains: []string{"udp"}}}, nil)
	require.NoError(t, err)
	_, ok := store.String("app.domains")
	assert.True(t, ok)
}

func TestApplyInjectHandlerWithoutChainErrors(t *testing.T) {
	store := NewStore()
	err := Apply(store, Directive{InjectHandler: &InjectHandler{Name: "x", IntoName: "y"}}, nil)
	assert.Error(t, err)
}
