package features

import (
	"justapengu.in/lapeda/pkg/laptable"
)

const raceSession = "RACE"

var compoundRanks = map[string]int64{
	"SOFT":         0,
	"MEDIUM":       1,
	"HARD":         2,
	"INTERMEDIATE": 3,
	"WET":          4,
}

func lapNormSession(table *laptable.Table) ([]laptable.Value, error) {
	g, err := table.GroupBy(laptable.ColumnSession)

	if err != nil {
		return nil, err
	}

	laps, err := table.Column(laptable.ColumnLapNumber)

	if err != nil {
		return nil, err
	}

	return ratioToGroupMax(g, laps), nil
}

func stintLen(table *laptable.Table) ([]laptable.Value, error) {
	g, err := table.GroupBy(laptable.ColumnSession, laptable.ColumnStint)

	if err != nil {
		return nil, err
	}

	sizes := make([]laptable.Value, g.NumGroups())

	for id := range sizes {
		sizes[id] = laptable.Int(int64(g.Size(id)))
	}

	return g.Broadcast(sizes), nil
}

func stintLapIndex(table *laptable.Table) ([]laptable.Value, error) {
	g, err := table.GroupBy(laptable.ColumnSession, laptable.ColumnStint)

	if err != nil {
		return nil, err
	}

	out := make([]laptable.Value, table.Len())

	for id := 0; id < g.NumGroups(); id++ {
		for i, row := range g.Members(id) {
			out[row] = laptable.Int(int64(i + 1))
		}
	}

	return out, nil
}

func stintLapNorm(table *laptable.Table) ([]laptable.Value, error) {
	g, err := table.GroupBy(laptable.ColumnSession, laptable.ColumnStint)

	if err != nil {
		return nil, err
	}

	out := make([]laptable.Value, table.Len())

	for id := 0; id < g.NumGroups(); id++ {
		size := float64(g.Size(id))

		for i, row := range g.Members(id) {
			out[row] = laptable.Float(float64(i+1) / size)
		}
	}

	return out, nil
}

func tyreLifeNormStint(table *laptable.Table) ([]laptable.Value, error) {
	g, err := table.GroupBy(laptable.ColumnSession, laptable.ColumnStint)

	if err != nil {
		return nil, err
	}

	tyreLife, err := table.Column(laptable.ColumnTyreLife)

	if err != nil {
		return nil, err
	}

	return ratioToGroupMax(g, tyreLife), nil
}

// ratioToGroupMax divides each value by the maximum of its group. Missing
// values, groups with no numeric values and groups whose maximum is zero
// yield missing.
func ratioToGroupMax(g *laptable.Grouping, values []laptable.Value) []laptable.Value {
	maxima := make([]laptable.Value, g.NumGroups())

	for id := range maxima {
		var max float64
		found := false

		for _, row := range g.Members(id) {
			v, ok := values[row].Float64()

			if ok && (!found || v > max) {
				max, found = v, true
			}
		}

		if found {
			maxima[id] = laptable.Float(max)
		}
	}

	groupMax := g.Broadcast(maxima)
	out := make([]laptable.Value, len(values))

	for row, value := range values {
		v, ok := value.Float64()
		max, hasMax := groupMax[row].Float64()

		if !ok || !hasMax || max == 0 {
			continue
		}

		out[row] = laptable.Float(v / max)
	}

	return out
}

func isRace(table *laptable.Table) ([]laptable.Value, error) {
	sessions, err := table.Column(laptable.ColumnSession)

	if err != nil {
		return nil, err
	}

	out := make([]laptable.Value, len(sessions))

	for row, session := range sessions {
		if s, ok := session.Str(); ok && s == raceSession {
			out[row] = laptable.Int(1)
		} else {
			out[row] = laptable.Int(0)
		}
	}

	return out, nil
}

func compoundOrder(table *laptable.Table) ([]laptable.Value, error) {
	compounds, err := table.Column(laptable.ColumnCompound)

	if err != nil {
		return nil, err
	}

	out := make([]laptable.Value, len(compounds))

	for row, compound := range compounds {
		s, ok := compound.Str()

		if !ok {
			continue
		}

		if rank, ok := compoundRanks[s]; ok {
			out[row] = laptable.Int(rank)
		}
	}

	return out, nil
}
