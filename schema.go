package libzmx

// SurfaceType tags a surface with its remote type string. The object and
// image planes are modeled as their own tags pinned to the ends of the
// sequence.
type SurfaceType string

const (
	TypeObject          SurfaceType = "OBJECT"
	TypeImage           SurfaceType = "IMAGE"
	TypeStandard        SurfaceType = "STANDARD"
	TypeCoordinateBreak SurfaceType = "COORDBRK"
	TypeToroidal        SurfaceType = "TOROIDAL"
	TypeGrating         SurfaceType = "DGRATING"
)

// pickupFormat describes how a native pickup solve is encoded for a column.
// Not every column accepts a scale or offset, and only auxiliary columns may
// reference a different column than their own.
type pickupFormat struct {
	code         int  // server solve type code for a pickup on this column
	hasScale     bool
	hasOffset    bool
	hasColRef    bool // pickup may dereference a different column
	reverseTerms bool // server wants offset before scale on aux columns
}

// paramSpec is one entry of a surface type's fixed parameter table: value
// kind, remote address and solve capabilities. The table is checked at
// construction; there is no runtime reflection.
type paramSpec struct {
	name        string
	addr        ParamAddr
	solveTarget int          // column code used with SetSolve, -1 if none
	fixCode     int          // solve type code that clears a constraint
	pickup      *pickupFormat // nil: pickups unsupported
	canVary     bool
	canFNumber  bool // f/# solve (curvature only)
	canMarginal bool // marginal-ray-height solve (thickness only)
	canMaximum  bool // maximum solve (semi-diameter only)
}

func dataParam(name string, kind ValueKind, column int) paramSpec {
	return paramSpec{
		name:        name,
		addr:        ParamAddr{Class: AddrData, Column: column, Kind: kind},
		solveTarget: -1,
	}
}

// auxParam columns use solve target column+4 and accept scaled, offset
// pickups that may reference other columns.
func auxParam(name string, column int) paramSpec {
	return paramSpec{
		name:        name,
		addr:        ParamAddr{Class: AddrAux, Column: column, Kind: Number},
		solveTarget: column + 4,
		pickup:      &pickupFormat{code: 2, hasScale: true, hasOffset: true, hasColRef: true, reverseTerms: true},
		canVary:     true,
	}
}

// extraParam columns use solve target column+1000 and scale-only pickups.
func extraParam(name string, column int) paramSpec {
	return paramSpec{
		name:        name,
		addr:        ParamAddr{Class: AddrExtra, Column: column, Kind: Number},
		solveTarget: column + 1000,
		pickup:      &pickupFormat{code: 2, hasScale: true},
		canVary:     true,
	}
}

func baseParams() []paramSpec {
	return []paramSpec{
		dataParam("comment", Text, 1),
		{
			name:        "thickness",
			addr:        ParamAddr{Class: AddrData, Column: 3, Kind: Number},
			solveTarget: 1,
			pickup:      &pickupFormat{code: 5, hasScale: true, hasOffset: true},
			canVary:     true,
			canMarginal: true,
		},
		dataParam("ignored", Number, 20),
	}
}

func standardParams() []paramSpec {
	params := baseParams()
	params = append(params,
		paramSpec{
			name:        "curvature",
			addr:        ParamAddr{Class: AddrData, Column: 2, Kind: Number},
			solveTarget: 0,
			pickup:      &pickupFormat{code: 4, hasScale: true},
			canVary:     true,
			canFNumber:  true,
		},
		paramSpec{
			name:        "glass",
			addr:        ParamAddr{Class: AddrData, Column: 4, Kind: Text},
			solveTarget: 2,
			pickup:      &pickupFormat{code: 2},
		},
		paramSpec{
			name: "semidia",
			addr: ParamAddr{Class: AddrData, Column: 5, Kind: Number},
			// Semi-diameter solve code 0 means automatic; 1 is fixed.
			solveTarget: 3,
			fixCode:     1,
			pickup:      &pickupFormat{code: 2, hasScale: true},
			canMaximum:  true,
		},
		paramSpec{
			name:        "conic",
			addr:        ParamAddr{Class: AddrData, Column: 6, Kind: Number},
			solveTarget: 4,
			pickup:      &pickupFormat{code: 2, hasScale: true},
			canVary:     true,
		},
		dataParam("coating", Text, 7),
	)
	return params
}

func coordinateBreakParams() []paramSpec {
	params := baseParams()
	params = append(params,
		auxParam("offset_x", 1),
		auxParam("offset_y", 2),
		auxParam("rotate_x", 3),
		auxParam("rotate_y", 4),
		auxParam("rotate_z", 5),
		auxParam("rotate_before_offset", 6),
	)
	return params
}

func toroidalParams() []paramSpec {
	params := standardParams()
	params = append(params,
		auxParam("radius_of_rotation", 1),
		extraParam("num_poly_terms", 1),
		extraParam("norm_radius", 2),
	)
	return params
}

func gratingParams() []paramSpec {
	params := standardParams()
	params = append(params,
		auxParam("groove_freq", 1),
		auxParam("order", 2),
	)
	return params
}

// schemaFor returns the fixed parameter table for a surface type. Unknown
// types fall back to the base table, so a pull never fails on a type this
// library does not model in detail.
func schemaFor(t SurfaceType) []paramSpec {
	switch t {
	case TypeStandard, TypeObject, TypeImage:
		return standardParams()
	case TypeCoordinateBreak:
		return coordinateBreakParams()
	case TypeToroidal:
		return toroidalParams()
	case TypeGrating:
		return gratingParams()
	default:
		return baseParams()
	}
}
