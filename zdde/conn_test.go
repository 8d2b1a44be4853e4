package zdde_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libzmx "github.com/dariussullivan/libzmx"
	"github.com/dariussullivan/libzmx/zdde"
	"github.com/dariussullivan/libzmx/zsim"
)

var (
	thicknessAddr = libzmx.ParamAddr{Class: libzmx.AddrData, Column: 3, Kind: libzmx.Number}
	commentAddr   = libzmx.ParamAddr{Class: libzmx.AddrData, Column: 1, Kind: libzmx.Text}
	auxAddr       = libzmx.ParamAddr{Class: libzmx.AddrAux, Column: 2, Kind: libzmx.Number}
)

func newConn(t *testing.T, opts ...zdde.Option) (*zsim.Server, *zdde.Conn) {
	t.Helper()
	sim := zsim.New()
	return sim, zdde.New(sim, opts...)
}

func TestGetSurfaceCount(t *testing.T) {
	_, conn := newConn(t)
	n, err := conn.GetSurfaceCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "fresh simulator holds the minimal lens")
}

func TestSetSurfaceCountGrowsAndShrinks(t *testing.T) {
	sim, conn := newConn(t)
	ctx := context.Background()

	require.NoError(t, conn.SetSurfaceCount(ctx, 5))
	assert.Equal(t, 5, sim.SurfaceCount())
	assert.Subset(t, sim.History(), []string{"InsertSurface,1", "InsertSurface,2", "InsertSurface,3"})

	require.NoError(t, conn.SetSurfaceCount(ctx, 3))
	assert.Equal(t, 3, sim.SurfaceCount())
	assert.Subset(t, sim.History(), []string{"DeleteSurface,3", "DeleteSurface,2"})
}

func TestParameterWireEncoding(t *testing.T) {
	sim, conn := newConn(t)
	ctx := context.Background()

	require.NoError(t, conn.SetParameter(ctx, 1, thicknessAddr, libzmx.Num(2.5)))
	assert.Contains(t, sim.History(), "SetSurfaceData,1,3,2.50000000000000000000E+00",
		"floats travel in the server's fixed-width exponent form")

	v, err := conn.GetParameter(ctx, 1, thicknessAddr)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.Number())
}

func TestTextParameterKeepsCommas(t *testing.T) {
	_, conn := newConn(t)
	ctx := context.Background()

	require.NoError(t, conn.SetParameter(ctx, 0, commentAddr, libzmx.Str("doublet, cemented")))
	v, err := conn.GetParameter(ctx, 0, commentAddr)
	require.NoError(t, err)
	assert.Equal(t, "doublet, cemented", v.Text())
}

func TestAuxiliaryColumnsUseParameterItems(t *testing.T) {
	sim, conn := newConn(t)
	ctx := context.Background()

	require.NoError(t, conn.SetParameter(ctx, 1, auxAddr, libzmx.Num(4)))
	assert.Contains(t, sim.History(), "SetSurfaceParameter,1,2,4.00000000000000000000E+00")

	v, err := conn.GetParameter(ctx, 1, auxAddr)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Number())
}

func TestSetSolveIntegersStayIntegers(t *testing.T) {
	sim, conn := newConn(t)

	require.NoError(t, conn.SetSolve(context.Background(), 1, 1, 5, 1, 2.5))
	rec, ok := sim.Solve(1, 1)
	require.True(t, ok)
	assert.Equal(t, "5,1,2.50000000000000000000E+00", rec,
		"surface references travel as plain integers, modifiers as floats")
}

func TestSurfaceTypeEndpointsFlattenOnWire(t *testing.T) {
	sim, conn := newConn(t)
	ctx := context.Background()

	require.NoError(t, conn.SetSurfaceType(ctx, 0, libzmx.TypeObject))
	require.NoError(t, conn.SetSurfaceType(ctx, 1, libzmx.TypeImage))
	history := sim.History()
	assert.Contains(t, history, "SetSurfaceData,0,0,STANDARD")
	assert.Contains(t, history, "SetSurfaceData,1,0,STANDARD")

	got, err := conn.GetSurfaceType(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, libzmx.TypeStandard, got)
}

func TestPushDisabledReply(t *testing.T) {
	sim, conn := newConn(t)
	sim.SetPushEnabled(false)
	ctx := context.Background()

	enabled, err := conn.PushEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	err = conn.PushToFrontend(ctx)
	assert.ErrorIs(t, err, libzmx.ErrPushDisabled)
}

func TestTransportFailureWrapsRemoteUnavailable(t *testing.T) {
	sim, conn := newConn(t)
	sim.FailNext("GetSystem")

	_, err := conn.GetSurfaceCount(context.Background())
	assert.ErrorIs(t, err, libzmx.ErrRemoteUnavailable)

	// The failure was one-shot.
	n, err := conn.GetSurfaceCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBadCommandIsProtocolNotTransport(t *testing.T) {
	_, conn := newConn(t)

	_, err := conn.GetParameter(context.Background(), 99, thicknessAddr)
	require.Error(t, err)
	assert.NotErrorIs(t, err, libzmx.ErrRemoteUnavailable)
}

func TestMetricsCountPerOperation(t *testing.T) {
	m := zdde.NewMetrics()
	_, conn := newConn(t, zdde.WithMetrics(m))
	ctx := context.Background()

	_, err := conn.GetSurfaceCount(ctx)
	require.NoError(t, err)
	_, err = conn.GetSurfaceCount(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.SetParameter(ctx, 1, thicknessAddr, libzmx.Num(1)))

	counts, err := m.CallCounts()
	require.NoError(t, err)
	assert.Equal(t, 2.0, counts["GetSystem"])
	assert.Equal(t, 1.0, counts["SetSurfaceData"])
}
