// Package zdde implements the design-server call-and-reply protocol: each
// operation is a comma-separated data item sent over a Requester and
// answered with a single text reply. The grammar follows the server's
// extension command set ("GetSurfaceData,5,3", "SetSolve,6,0,11,3.5", ...).
package zdde

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	libzmx "github.com/dariussullivan/libzmx"
)

// Requester is the raw call-and-reply channel to the design server. A
// request either completes with the server's reply or fails; there is no
// retry and no transaction.
type Requester interface {
	Request(ctx context.Context, item string) (string, error)
}

// Conn implements libzmx.RemoteHandle by formatting data items over a
// Requester. It is not safe for concurrent use; the server it fronts is
// fragile under concurrent calls.
type Conn struct {
	req          Requester
	metrics      *Metrics
	nativePickup bool
}

// Option configures a Conn.
type Option func(*Conn)

// WithMetrics attaches call instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Conn) { c.metrics = m }
}

// WithoutNativePickup disables native pickup registration, degrading
// pickups to one-shot computed writes.
func WithoutNativePickup() Option {
	return func(c *Conn) { c.nativePickup = false }
}

// New wraps a Requester in a RemoteHandle.
func New(req Requester, opts ...Option) *Conn {
	c := &Conn{req: req, nativePickup: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ libzmx.RemoteHandle = (*Conn)(nil)

// do sends one data item and returns the trimmed reply. Transport failures
// wrap ErrRemoteUnavailable; a "BAD COMMAND" reply is a protocol error, not
// a transport one.
func (c *Conn) do(ctx context.Context, op, item string) (string, error) {
	start := time.Now()
	reply, err := c.req.Request(ctx, item)
	if c.metrics != nil {
		c.metrics.observe(op, time.Since(start), err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", libzmx.ErrRemoteUnavailable, op, err)
	}
	reply = strings.TrimRight(reply, "\r\n")
	if strings.HasPrefix(reply, "BAD COMMAND") {
		return "", fmt.Errorf("%s: server rejected %q", op, item)
	}
	return reply, nil
}

// encode renders a float the way the server expects on the wire.
func encode(v float64) string {
	return fmt.Sprintf("%.20E", v)
}

// decodeFloat accepts the server's numeric encodings ("0.0000E+000", plain
// integers) uniformly.
func decodeFloat(op, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad numeric reply %q", op, s)
	}
	return v, nil
}

// wireType maps the local endpoint tags onto the wire, where the object and
// image planes are plain standard surfaces.
func wireType(t libzmx.SurfaceType) string {
	switch t {
	case libzmx.TypeObject, libzmx.TypeImage:
		return string(libzmx.TypeStandard)
	}
	return string(t)
}

// GetSurfaceCount queries the system data item; the reply's first field is
// the highest surface number, so the count is one more.
func (c *Conn) GetSurfaceCount(ctx context.Context) (int, error) {
	reply, err := c.do(ctx, "GetSystem", "GetSystem")
	if err != nil {
		return 0, err
	}
	fields := strings.SplitN(reply, ",", 2)
	numsurfs, err := decodeFloat("GetSystem", fields[0])
	if err != nil {
		return 0, err
	}
	return int(numsurfs) + 1, nil
}

// SetSurfaceCount grows or shrinks the remote sequence by inserting before
// the image plane or deleting from the back, one call per step. The server
// has no bulk resize item.
func (c *Conn) SetSurfaceCount(ctx context.Context, n int) error {
	cur, err := c.GetSurfaceCount(ctx)
	if err != nil {
		return err
	}
	for cur < n {
		if _, err := c.do(ctx, "InsertSurface", fmt.Sprintf("InsertSurface,%d", cur-1)); err != nil {
			return err
		}
		cur++
	}
	for cur > n {
		if _, err := c.do(ctx, "DeleteSurface", fmt.Sprintf("DeleteSurface,%d", cur-2)); err != nil {
			return err
		}
		cur--
	}
	return nil
}

func (c *Conn) GetSurfaceType(ctx context.Context, surf int) (libzmx.SurfaceType, error) {
	reply, err := c.do(ctx, "GetSurfaceData", fmt.Sprintf("GetSurfaceData,%d,0", surf))
	if err != nil {
		return "", err
	}
	return libzmx.SurfaceType(reply), nil
}

func (c *Conn) SetSurfaceType(ctx context.Context, surf int, t libzmx.SurfaceType) error {
	_, err := c.do(ctx, "SetSurfaceData", fmt.Sprintf("SetSurfaceData,%d,0,%s", surf, wireType(t)))
	return err
}

// accessor returns the get/set item names for an address class.
func accessor(class libzmx.AddrClass) (get, set string) {
	switch class {
	case libzmx.AddrAux:
		return "GetSurfaceParameter", "SetSurfaceParameter"
	case libzmx.AddrExtra:
		return "GetExtra", "SetExtra"
	default:
		return "GetSurfaceData", "SetSurfaceData"
	}
}

func (c *Conn) GetParameter(ctx context.Context, surf int, addr libzmx.ParamAddr) (libzmx.Value, error) {
	get, _ := accessor(addr.Class)
	reply, err := c.do(ctx, get, fmt.Sprintf("%s,%d,%d", get, surf, addr.Column))
	if err != nil {
		return libzmx.Value{}, err
	}
	if addr.Kind == libzmx.Text {
		return libzmx.Str(reply), nil
	}
	v, err := decodeFloat(get, reply)
	if err != nil {
		return libzmx.Value{}, err
	}
	return libzmx.Num(v), nil
}

func (c *Conn) SetParameter(ctx context.Context, surf int, addr libzmx.ParamAddr, v libzmx.Value) error {
	_, set := accessor(addr.Class)
	var payload string
	if v.Kind() == libzmx.Text {
		payload = v.Text()
	} else {
		payload = encode(v.Number())
	}
	_, err := c.do(ctx, set, fmt.Sprintf("%s,%d,%d,%s", set, surf, addr.Column, payload))
	return err
}

func (c *Conn) SetSolve(ctx context.Context, surf int, target int, code int, args ...float64) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SetSolve,%d,%d,%d", surf, target, code)
	for _, a := range args {
		sb.WriteByte(',')
		// Surface numbers and column codes travel as integers.
		if a == float64(int64(a)) {
			sb.WriteString(strconv.FormatInt(int64(a), 10))
		} else {
			sb.WriteString(encode(a))
		}
	}
	_, err := c.do(ctx, "SetSolve", sb.String())
	return err
}

// PushToFrontend copies the server lens into the frontend editor. Reply -999
// means the capability is disabled in the server preferences.
func (c *Conn) PushToFrontend(ctx context.Context) error {
	reply, err := c.do(ctx, "PushLens", "PushLens,0")
	if err != nil {
		return err
	}
	status, err := decodeFloat("PushLens", reply)
	if err != nil {
		return err
	}
	if int(status) == -999 {
		return libzmx.ErrPushDisabled
	}
	if status != 0 {
		return fmt.Errorf("PushLens: server reported error %d", int(status))
	}
	return nil
}

func (c *Conn) PullFromFrontend(ctx context.Context) error {
	reply, err := c.do(ctx, "GetRefresh", "GetRefresh")
	if err != nil {
		return err
	}
	status, err := decodeFloat("GetRefresh", reply)
	if err != nil {
		return err
	}
	if status != 0 {
		return fmt.Errorf("GetRefresh: server reported error %d", int(status))
	}
	return nil
}

func (c *Conn) PushEnabled(ctx context.Context) (bool, error) {
	reply, err := c.do(ctx, "PushLensPermission", "PushLensPermission")
	if err != nil {
		return false, err
	}
	status, err := decodeFloat("PushLensPermission", reply)
	if err != nil {
		return false, err
	}
	return int(status) == 1, nil
}

func (c *Conn) SupportsNativePickup() bool { return c.nativePickup }
