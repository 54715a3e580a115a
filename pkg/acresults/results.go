// Package acresults reads Assetto Corsa session results files into lap tables.
package acresults

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"justapengu.in/lapeda/pkg/laptable"
)

var (
	ErrDriverRequired = errors.New("acresults: results hold laps for several drivers, a driver GUID is required")
	ErrDriverNotFound = errors.New("acresults: driver has no laps in results")
)

const ColumnCuts = "Cuts"

type SessionResults struct {
	Version     int           `json:"Version"`
	Laps        []*SessionLap `json:"Laps"`
	TrackConfig string        `json:"TrackConfig"`
	TrackName   string        `json:"TrackName"`
	Type        string        `json:"Type"`
	Date        time.Time     `json:"Date"`
	SessionFile string        `json:"SessionFile"`
}

type SessionLap struct {
	CarModel   string `json:"CarModel"`
	Cuts       int    `json:"Cuts"`
	DriverGUID string `json:"DriverGuid"`
	DriverName string `json:"DriverName"`
	LapTime    int    `json:"LapTime"`
	Sectors    []int  `json:"Sectors"`
	Timestamp  int    `json:"Timestamp"`
	Tyre       string `json:"Tyre"`
}

func Read(r io.Reader) (*SessionResults, error) {
	var results *SessionResults

	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, pkgerrors.Wrap(err, "acresults: could not decode results")
	}

	return results, nil
}

// Drivers returns the GUIDs of every driver with a lap, in order of their first lap.
func (s *SessionResults) Drivers() []string {
	seen := make(map[string]bool)
	var drivers []string

	for _, lap := range s.Laps {
		if !seen[lap.DriverGUID] {
			seen[lap.DriverGUID] = true
			drivers = append(drivers, lap.DriverGUID)
		}
	}

	return drivers
}

// LapTable builds the lap table of one driver. An empty guid selects the only
// driver in the results. Laps are numbered by completion time, a tyre change
// starts a new stint, and TyreLife counts laps on the current set.
func (s *SessionResults) LapTable(guid string) (*laptable.Table, error) {
	if guid == "" {
		drivers := s.Drivers()

		if len(drivers) != 1 {
			return nil, ErrDriverRequired
		}

		guid = drivers[0]
	}

	var laps []*SessionLap

	for _, lap := range s.Laps {
		if lap.DriverGUID == guid {
			laps = append(laps, lap)
		}
	}

	if len(laps) == 0 {
		return nil, pkgerrors.Wrap(ErrDriverNotFound, guid)
	}

	sort.SliceStable(laps, func(i, j int) bool {
		return laps[i].Timestamp < laps[j].Timestamp
	})

	table := laptable.New(
		laptable.ColumnSession,
		laptable.ColumnLapNumber,
		laptable.ColumnStint,
		laptable.ColumnLapTime,
		laptable.ColumnTyreLife,
		laptable.ColumnCompound,
		ColumnCuts,
	)

	stint, tyreLife := 0, 0

	for i, lap := range laps {
		if i == 0 || lap.Tyre != laps[i-1].Tyre {
			stint++
			tyreLife = 0
		}

		tyreLife++

		compound := laptable.Missing()

		if lap.Tyre != "" {
			compound = laptable.String(lap.Tyre)
		}

		if err := table.AppendRow(
			laptable.String(s.Type),
			laptable.Int(int64(i+1)),
			laptable.Int(int64(stint)),
			laptable.Duration(time.Duration(lap.LapTime)*time.Millisecond),
			laptable.Int(int64(tyreLife)),
			compound,
			laptable.Int(int64(lap.Cuts)),
		); err != nil {
			return nil, err
		}
	}

	return table, nil
}
