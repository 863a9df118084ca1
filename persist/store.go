// Package persist implements the agent core's persistent-store contract
// (spec.md §6): a narrow Store interface plus a line codec for talking to
// an external pass-persist-style backend over a pipe, grounded on
// Plugin/ucd-snmp/pass_persist.c's "get\n<oid>\n" / "getnext\n<oid>\n" /
// "set\n<oid>\n<type>\n<value>\n" request lines and "NONE\n" /
// "<oid>\n<type>\n<value>\n" response lines.
package persist

import (
	"bufio"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/ber"
	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/varbind"
)

// ErrNotFound is returned by Get/GetNext when the backend replies "NONE".
var ErrNotFound = errors.New("persist: not found")

// ErrNotWritable mirrors pass_persist.c's PRIOT_ERR_NOTWRITABLE: the
// backend rejected a Set, either because the pipe is down or because it
// returned a non-"DONE" status line.
var ErrNotWritable = errors.New("persist: not writable")

// Store is the narrow contract a persistent backend implements, mirrored
// one-to-one onto pass_persist.c's get/getnext/set pipe commands.
type Store interface {
	Get(name oid.OID) (oid.OID, varbind.TypedValue, error)
	GetNext(name oid.OID) (oid.OID, varbind.TypedValue, error)
	Set(name oid.OID, value varbind.TypedValue) error
}

// PipeStore drives a Store over a line-based pipe to an external process,
// exactly as pass_persist.c's write_persist_pipe/fgets pair does: one
// request line pair out, one response read back in, guarded by a single
// mutex since the underlying pipe has no concept of concurrent requests.
type PipeStore struct {
	mu sync.Mutex
	w  io.Writer
	r  *bufio.Reader
}

// NewPipeStore wraps the write side and read side of an already-opened
// pipe to a pass-persist-style child process.
func NewPipeStore(w io.Writer, r io.Reader) *PipeStore {
	return &PipeStore{w: w, r: bufio.NewReader(r)}
}

func (p *PipeStore) Get(name oid.OID) (oid.OID, varbind.TypedValue, error) {
	return p.query("get", name)
}

func (p *PipeStore) GetNext(name oid.OID) (oid.OID, varbind.TypedValue, error) {
	return p.query("getnext", name)
}

func (p *PipeStore) query(command string, name oid.OID) (oid.OID, varbind.TypedValue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.w, command+"\n"+name.String()+"\n"); err != nil {
		return nil, varbind.TypedValue{}, errors.Wrap(err, "persist: write request")
	}

	line, err := p.readLine()
	if err != nil {
		return nil, varbind.TypedValue{}, errors.Wrap(err, "persist: read response oid")
	}
	if line == "NONE" {
		return nil, varbind.TypedValue{}, ErrNotFound
	}

	resultOID, err := oid.Parse(line)
	if err != nil {
		return nil, varbind.TypedValue{}, errors.Wrap(err, "persist: malformed response oid")
	}

	typeTok, err := p.readLine()
	if err != nil {
		return nil, varbind.TypedValue{}, errors.Wrap(err, "persist: read response type")
	}
	valueTok, err := p.readLine()
	if err != nil {
		return nil, varbind.TypedValue{}, errors.Wrap(err, "persist: read response value")
	}

	value, err := decodeToken(typeTok, valueTok)
	if err != nil {
		return nil, varbind.TypedValue{}, err
	}
	return resultOID, value, nil
}

func (p *PipeStore) Set(name oid.OID, value varbind.TypedValue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	typeTok, valueTok, err := encodeToken(value)
	if err != nil {
		return err
	}

	req := "set\n" + name.String() + "\n" + typeTok + "\n" + valueTok + "\n"
	if _, err := io.WriteString(p.w, req); err != nil {
		return errors.Wrap(err, "persist: write set request")
	}

	status, err := p.readLine()
	if err != nil {
		return errors.Wrap(err, "persist: read set status")
	}
	if status != "DONE" {
		return errors.Wrapf(ErrNotWritable, "backend replied %q", status)
	}
	return nil
}

func (p *PipeStore) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return trimEOL(line), nil
}

func trimEOL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// tokens, one per pass_persist.c type letter this agent carries.
const (
	tokString    = "string"
	tokInteger   = "integer"
	tokObjectID  = "objectid"
	tokCounter   = "counter"
	tokGauge     = "gauge"
	tokTimeTicks = "timeticks"
	tokIPAddress = "ipaddress"
	tokCounter64 = "counter64"
)

func encodeToken(v varbind.TypedValue) (tok string, value string, err error) {
	switch v.Type {
	case ber.TagOctetString:
		return tokString, string(v.Value.([]byte)), nil
	case ber.TagInteger:
		return tokInteger, strconv.FormatInt(v.Int(), 10), nil
	case ber.TagObjectId:
		return tokObjectID, v.Value.(oid.OID).String(), nil
	case ber.TagCounter32:
		return tokCounter, strconv.FormatUint(uint64(v.Value.(uint32)), 10), nil
	case ber.TagGauge32:
		return tokGauge, strconv.FormatUint(uint64(v.Value.(uint32)), 10), nil
	case ber.TagTimeTicks:
		return tokTimeTicks, strconv.FormatUint(uint64(v.Value.(uint32)), 10), nil
	case ber.TagIPAddress:
		a := v.Value.([4]byte)
		return tokIPAddress, strconv.Itoa(int(a[0])) + "." + strconv.Itoa(int(a[1])) + "." +
			strconv.Itoa(int(a[2])) + "." + strconv.Itoa(int(a[3])), nil
	case ber.TagCounter64:
		return tokCounter64, strconv.FormatUint(v.Value.(uint64), 10), nil
	default:
		return "", "", errors.Errorf("persist: type %#x has no pass-persist token", v.Type)
	}
}

func decodeToken(tok, value string) (varbind.TypedValue, error) {
	switch tok {
	case tokString:
		return varbind.OctetStringValue([]byte(value)), nil
	case tokInteger:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return varbind.TypedValue{}, errors.Wrap(err, "persist: malformed integer value")
		}
		return varbind.IntegerValue(n), nil
	case tokObjectID:
		parsed, err := oid.Parse(value)
		if err != nil {
			return varbind.TypedValue{}, errors.Wrap(err, "persist: malformed objectid value")
		}
		return varbind.OIDValue(parsed), nil
	case tokCounter:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return varbind.TypedValue{}, errors.Wrap(err, "persist: malformed counter value")
		}
		return varbind.Counter32Value(uint32(n)), nil
	case tokGauge:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return varbind.TypedValue{}, errors.Wrap(err, "persist: malformed gauge value")
		}
		return varbind.Gauge32Value(uint32(n)), nil
	case tokTimeTicks:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return varbind.TypedValue{}, errors.Wrap(err, "persist: malformed timeticks value")
		}
		return varbind.TimeTicksValue(uint32(n)), nil
	case tokCounter64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return varbind.TypedValue{}, errors.Wrap(err, "persist: malformed counter64 value")
		}
		return varbind.Counter64Value(n), nil
	default:
		return varbind.TypedValue{}, errors.Errorf("persist: unknown type token %q", tok)
	}
}
