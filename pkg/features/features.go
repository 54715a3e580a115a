// Package features derives per-lap model inputs from session, stint, tyre and
// compound columns. Lap times are the prediction target, so no feature may
// read them.
package features

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"justapengu.in/lapeda/pkg/laptable"
)

var ErrTargetLeak = errors.New("features: feature requires a target column")

type Logger = logrus.FieldLogger

// TargetColumns are hidden from every feature.
var TargetColumns = []string{laptable.ColumnLapTime, laptable.ColumnLapTimeS}

// DeriveFunc computes one value per row of table.
type DeriveFunc func(table *laptable.Table) ([]laptable.Value, error)

// Feature is derived only when every column in Requires is present.
type Feature struct {
	Name     string
	Requires []string
	Derive   DeriveFunc
}

const (
	LapNormSession    = "lap_norm_session"
	StintLen          = "stint_len"
	StintLapIndex     = "stint_lap_index"
	StintLapNorm      = "stint_lap_norm"
	TyreLifeNormStint = "tyrelife_norm_stint"
	IsRace            = "is_race"
	CompoundOrder     = "compound_order"
)

var stintKeys = []string{laptable.ColumnSession, laptable.ColumnStint, laptable.ColumnLapNumber}

// Default is the standard feature set, in output column order.
var Default = []Feature{
	{Name: LapNormSession, Requires: []string{laptable.ColumnSession, laptable.ColumnLapNumber}, Derive: lapNormSession},
	{Name: StintLen, Requires: stintKeys, Derive: stintLen},
	{Name: StintLapIndex, Requires: stintKeys, Derive: stintLapIndex},
	{Name: StintLapNorm, Requires: stintKeys, Derive: stintLapNorm},
	{Name: TyreLifeNormStint, Requires: []string{laptable.ColumnSession, laptable.ColumnStint, laptable.ColumnTyreLife}, Derive: tyreLifeNormStint},
	{Name: IsRace, Requires: []string{laptable.ColumnSession}, Derive: isRace},
	{Name: CompoundOrder, Requires: []string{laptable.ColumnCompound}, Derive: compoundOrder},
}

type Builder struct {
	features []Feature
	logger   Logger
}

// NewBuilder returns a Builder over features, or over Default when none are given.
func NewBuilder(logger Logger, features ...Feature) (*Builder, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if len(features) == 0 {
		features = Default
	}

	for _, feature := range features {
		for _, column := range feature.Requires {
			if isTarget(column) {
				return nil, pkgerrors.Wrapf(ErrTargetLeak, "%s requires %s", feature.Name, column)
			}
		}
	}

	return &Builder{
		features: features,
		logger:   logger,
	}, nil
}

func isTarget(column string) bool {
	for _, target := range TargetColumns {
		if column == target {
			return true
		}
	}

	return false
}

// Build returns a copy of table with every feature whose prerequisites are
// present appended. Features with missing prerequisites are skipped.
func (b *Builder) Build(table *laptable.Table) (*laptable.Table, error) {
	inputs := table.Without(TargetColumns...)
	out := table.Clone()

	for _, feature := range b.features {
		if !inputs.HasAll(feature.Requires...) {
			b.logger.Debugf("Features: skipping %s, requires %v", feature.Name, feature.Requires)
			continue
		}

		values, err := feature.Derive(inputs)

		if err != nil {
			return nil, pkgerrors.Wrapf(err, "features: could not derive %s", feature.Name)
		}

		if err := out.SetColumn(feature.Name, values); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Build derives the Default features.
func Build(table *laptable.Table) (*laptable.Table, error) {
	b, err := NewBuilder(nil)

	if err != nil {
		return nil, err
	}

	return b.Build(table)
}
