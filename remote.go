package libzmx

import "context"

// AddrClass selects which remote accessor family a parameter column belongs
// to. The design server exposes three distinct get/set command pairs.
type AddrClass int

const (
	AddrData  AddrClass = iota // surface data columns
	AddrAux                    // auxiliary "parameter" columns
	AddrExtra                  // extra data columns
)

// ParamAddr is the remote address of one parameter: accessor class, column
// code and the value kind expected at that column. Addresses are fixed per
// surface type at construction.
type ParamAddr struct {
	Class  AddrClass
	Column int
	Kind   ValueKind
}

// RemoteHandle is the call-and-reply channel to the design server. Every
// call is synchronous and may fail independently of prior calls; there is no
// transaction primitive. Implementations report transport failures by
// wrapping ErrRemoteUnavailable.
//
// The handle is a single shared, stateful resource. The server is known to
// misbehave under concurrent or rapid-fire calls, so callers are expected to
// drive it from a single goroutine; the library provides no internal locking
// beyond the sequence's single-flight push/pull guard.
type RemoteHandle interface {
	// GetSurfaceCount returns the number of surfaces, object plane included.
	GetSurfaceCount(ctx context.Context) (int, error)

	// SetSurfaceCount grows or shrinks the remote sequence to n surfaces.
	SetSurfaceCount(ctx context.Context, n int) error

	GetSurfaceType(ctx context.Context, surf int) (SurfaceType, error)
	SetSurfaceType(ctx context.Context, surf int, t SurfaceType) error

	GetParameter(ctx context.Context, surf int, addr ParamAddr) (Value, error)
	SetParameter(ctx context.Context, surf int, addr ParamAddr, v Value) error

	// SetSolve attaches a solve to the column identified by target on the
	// given surface. code is the server's solve type code; args depend on it.
	SetSolve(ctx context.Context, surf int, target int, code int, args ...float64) error

	// PushToFrontend copies the server-side lens into the frontend editor.
	// Fails with ErrPushDisabled when the capability is off.
	PushToFrontend(ctx context.Context) error

	// PullFromFrontend copies the frontend editor's lens into the server.
	PullFromFrontend(ctx context.Context) error

	// PushEnabled reports whether the frontend push capability is on.
	PushEnabled(ctx context.Context) (bool, error)

	// SupportsNativePickup reports whether the server can mirror pickup
	// relationships natively. When false, pickups degrade to one-shot
	// computed writes.
	SupportsNativePickup() bool
}

// Remote solve type codes, as understood by the design server.
const (
	solveCodeFixed       = 0
	solveCodeVariable    = 1
	solveCodeMarginalRay = 2
	solveCodeMaximum     = 3
	solveCodeFNumber     = 11
)
