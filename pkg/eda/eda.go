package eda

import (
	"math"
	"sort"

	"justapengu.in/lapeda/pkg/laptable"
)

// GroupSummary holds lap time statistics, in seconds, for one group of laps.
type GroupSummary struct {
	Key   string  `json:"key"`
	Laps  int     `json:"laps"`
	Best  float64 `json:"best"`
	Mean  float64 `json:"mean"`
	Worst float64 `json:"worst"`
}

type Description struct {
	Laps   int     `json:"laps"`
	Timed  int     `json:"timed"`
	Best   float64 `json:"best"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Worst  float64 `json:"worst"`
	StdDev float64 `json:"std_dev"`
}

// Describe summarises the lap times of a whole table.
func Describe(table *laptable.Table) (*Description, error) {
	df, err := laptable.WithLapTimeSeconds(table)

	if err != nil {
		return nil, err
	}

	seconds, valid, err := laptable.LapTimeSeconds(df)

	if err != nil {
		return nil, err
	}

	var timed []float64

	for i, s := range seconds {
		if valid[i] {
			timed = append(timed, s)
		}
	}

	d := &Description{
		Laps:  df.Len(),
		Timed: len(timed),
	}

	if len(timed) == 0 {
		return d, nil
	}

	sort.Float64s(timed)

	d.Best, d.Worst = timed[0], timed[len(timed)-1]
	d.Mean = mean(timed)

	if n := len(timed); n%2 == 1 {
		d.Median = timed[n/2]
	} else {
		d.Median = (timed[n/2-1] + timed[n/2]) / 2
	}

	var variance float64

	for _, s := range timed {
		variance += (s - d.Mean) * (s - d.Mean)
	}

	if len(timed) > 1 {
		d.StdDev = math.Sqrt(variance / float64(len(timed)-1))
	}

	return d, nil
}

// Summarize groups laps by column and reports lap time statistics per group,
// in order of first appearance. Laps with a missing key or lap time are left out.
func Summarize(table *laptable.Table, by string) ([]GroupSummary, error) {
	df, err := laptable.WithLapTimeSeconds(table)

	if err != nil {
		return nil, err
	}

	g, err := df.GroupBy(by)

	if err != nil {
		return nil, err
	}

	seconds, valid, err := laptable.LapTimeSeconds(df)

	if err != nil {
		return nil, err
	}

	var summaries []GroupSummary

	for id := 0; id < g.NumGroups(); id++ {
		members := g.Members(id)

		var timed []float64

		for _, row := range members {
			if valid[row] {
				timed = append(timed, seconds[row])
			}
		}

		if len(timed) == 0 {
			continue
		}

		summary := GroupSummary{
			Key:   df.Value(members[0], by).String(),
			Laps:  len(timed),
			Best:  math.Inf(1),
			Worst: math.Inf(-1),
			Mean:  mean(timed),
		}

		for _, s := range timed {
			summary.Best = math.Min(summary.Best, s)
			summary.Worst = math.Max(summary.Worst, s)
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// CategoryCodes numbers the distinct values of column 0..n-1 in order of
// first appearance. Missing values are not coded.
func CategoryCodes(table *laptable.Table, column string) (map[string]int, []string, error) {
	values, err := table.Column(column)

	if err != nil {
		return nil, nil, err
	}

	codes := make(map[string]int)
	var order []string

	for _, value := range values {
		if value.IsMissing() {
			continue
		}

		key := value.String()

		if _, ok := codes[key]; ok {
			continue
		}

		codes[key] = len(order)
		order = append(order, key)
	}

	return codes, order, nil
}

func mean(values []float64) float64 {
	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
